package repositories

import (
	"context"

	"sembako/internal/models"
)

// TransactionRepository defines the interface for the append-only transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	// GetByID only finds transactions owned by userID.
	GetByID(ctx context.Context, id, userID uint) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
}
