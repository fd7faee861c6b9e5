package repositories

import (
	"context"
	"errors"
	"fmt"

	"sembako/internal/apperrors"
	"sembako/internal/models"

	"gorm.io/gorm"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{
		db: db,
	}
}

// Create inserts the transaction together with its item snapshot.
func (r *GORMTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID filters on the owner in the query itself, so a transaction of
// another user is indistinguishable from a missing one.
func (r *GORMTransactionRepository) GetByID(ctx context.Context, id, userID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Transaction not found")
		}
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &txn, nil
}

// ListByUser returns the user's transactions, newest first.
func (r *GORMTransactionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	txns := []models.Transaction{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	return txns, nil
}
