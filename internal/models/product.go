package models

import "time"

// Product represents a catalog entry. Stock only changes through checkout.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       Money     `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int       `json:"stock" gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	Category    string    `json:"category" gorm:"type:varchar(100)"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
