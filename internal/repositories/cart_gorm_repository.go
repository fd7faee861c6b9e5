package repositories

import (
	"context"
	"errors"
	"fmt"

	"sembako/internal/apperrors"
	"sembako/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// ListByUser returns the user's cart lines with their products, oldest first.
func (r *GORMCartRepository) ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart for user %d: %w", userID, err)
	}
	return items, nil
}

// GetByID returns a cart line only if it belongs to userID.
func (r *GORMCartRepository) GetByID(ctx context.Context, id, userID uint) (*models.CartItem, error) {
	return r.first(ctx, "id = ? AND user_id = ?", id, userID)
}

// GetByUserAndProduct returns the user's line for a product, if any.
func (r *GORMCartRepository) GetByUserAndProduct(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	return r.first(ctx, "user_id = ? AND product_id = ?", userID, productID)
}

func (r *GORMCartRepository) first(ctx context.Context, query string, args ...any) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Preload("Product").Where(query, args...).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Cart item not found")
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// Create inserts the line without touching the associated product row.
func (r *GORMCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("Product is already in the cart, please retry", err)
		}
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of a cart line. Ownership is checked by the caller.
func (r *GORMCartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Cart item not found")
	}
	return nil
}

// Delete removes one of the user's cart lines.
func (r *GORMCartRepository) Delete(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Cart item not found")
	}
	return nil
}

// DeleteByUser empties the user's cart and reports how many lines were removed.
func (r *GORMCartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
