package services

import (
	"context"

	"sembako/internal/apperrors"
	"sembako/internal/models"
	"sembako/internal/repositories"
)

// CartSummary is a user's cart with its derived total.
type CartSummary struct {
	Items       []models.CartItem `json:"items"`
	TotalAmount models.Money      `json:"totalAmount"`
	ItemCount   int               `json:"itemCount"`
}

// CartService handles business logic for the per-user cart.
type CartService struct {
	carts repositories.CartRepository
	uow   repositories.UnitOfWork
}

// NewCartService creates a new CartService. Reads go through carts; writes
// that check stock run inside uow so the check and the write see the same data.
func NewCartService(carts repositories.CartRepository, uow repositories.UnitOfWork) *CartService {
	return &CartService{
		carts: carts,
		uow:   uow,
	}
}

// ListCart returns the user's lines joined with current product data.
func (s *CartService) ListCart(ctx context.Context, userID uint) (*CartSummary, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CartSummary{
		Items:       items,
		TotalAmount: models.CartTotal(items),
		ItemCount:   len(items),
	}, nil
}

// AddItem puts quantity units of a product in the cart. If the product is
// already there the quantities are summed, and the sum must still fit in
// stock; the request fails rather than being clamped. The returned bool
// reports whether a new line was created.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, bool, error) {
	if quantity < 1 {
		return nil, false, apperrors.Validation("Quantity must be greater than 0")
	}

	var (
		item    *models.CartItem
		created bool
	)
	err := s.uow.Do(ctx, func(r repositories.Repositories) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return apperrors.InsufficientStock("Insufficient stock")
		}

		existing, err := r.Carts.GetByUserAndProduct(ctx, userID, productID)
		switch {
		case err == nil:
			newQuantity := existing.Quantity + quantity
			if newQuantity > product.Stock {
				return apperrors.InsufficientStock("Insufficient stock for requested quantity")
			}
			if err := r.Carts.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
				return err
			}
			existing.Quantity = newQuantity
			existing.Product = *product
			item = existing
		case apperrors.IsKind(err, apperrors.KindNotFound):
			line := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			if err := r.Carts.Create(ctx, line); err != nil {
				return err
			}
			line.Product = *product
			item = line
			created = true
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return item, created, nil
}

// UpdateItem sets the quantity of one of the user's lines.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("Quantity must be greater than 0")
	}

	var item *models.CartItem
	err := s.uow.Do(ctx, func(r repositories.Repositories) error {
		line, err := r.Carts.GetByID(ctx, itemID, userID)
		if err != nil {
			return err
		}
		if quantity > line.Product.Stock {
			return apperrors.InsufficientStock("Insufficient stock")
		}
		if err := r.Carts.UpdateQuantity(ctx, line.ID, quantity); err != nil {
			return err
		}
		line.Quantity = quantity
		item = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes one of the user's lines.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return s.carts.Delete(ctx, itemID, userID)
}
