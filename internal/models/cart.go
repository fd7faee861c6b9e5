package models

import "time"

// CartItem is one line of a user's cart. There is at most one line per
// (user, product) pair; adding the same product again merges quantities.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint      `json:"productId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1;check:chk_cart_items_quantity,quantity >= 1"`
	Product   Product   `json:"product" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subtotal is quantity × current unit price, rounded to currency precision.
func (c CartItem) Subtotal() Money {
	return LineSubtotal(c.Product.Price, c.Quantity)
}
