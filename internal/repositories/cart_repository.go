package repositories

import (
	"context"

	"sembako/internal/models"
)

// CartRepository defines the interface for cart line data access.
// Every lookup is scoped to the owning user.
type CartRepository interface {
	// ListByUser returns the user's lines with their products preloaded.
	ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error)
	GetByID(ctx context.Context, id, userID uint) (*models.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID, productID uint) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id, userID uint) error
	// DeleteByUser removes every line of the user and reports how many were removed.
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}
