package repositories

import (
	"context"

	"sembako/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	// DecrementStock subtracts quantity from the product's stock only if at
	// least quantity units remain. It fails with an insufficient stock error
	// otherwise, so stock never goes negative.
	DecrementStock(ctx context.Context, id uint, quantity int) error
}
