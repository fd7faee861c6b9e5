package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// TransactionItem is a line snapshot captured at checkout. It is copied by
// value and never refers back to the catalog, so later price or name changes
// do not alter past transactions.
type TransactionItem struct {
	ProductID uint   `json:"productId"`
	Name      string `json:"name"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  Money  `json:"subtotal"`
}

// Transaction is the immutable record of a completed checkout.
type Transaction struct {
	ID          uint                                 `json:"id" gorm:"primaryKey"`
	UserID      uint                                 `json:"userId" gorm:"not null;index"`
	TotalAmount Money                                `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status      TransactionStatus                    `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	Items       datatypes.JSONSlice[TransactionItem] `json:"items" gorm:"not null"`
	CreatedAt   time.Time                            `json:"createdAt"`
	UpdatedAt   time.Time                            `json:"updatedAt"`
}

// SnapshotItems copies the current state of each cart line into line snapshots.
func SnapshotItems(items []CartItem) []TransactionItem {
	snapshots := make([]TransactionItem, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, TransactionItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return snapshots
}
