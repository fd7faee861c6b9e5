package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"sembako/internal/apperrors"
	"sembako/internal/metrics"
	"sembako/internal/models"
	"sembako/internal/repositories"

	"github.com/google/uuid"
)

// EventTransactionCompleted is the type of the event published after a checkout commits.
const EventTransactionCompleted = "transaction.completed"

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	PublishEvent(eventType string, body []byte) error
}

// TransactionCompletedEvent is the payload of EventTransactionCompleted.
type TransactionCompletedEvent struct {
	EventID       string       `json:"event_id"`
	EventType     string       `json:"event_type"`
	TransactionID uint         `json:"transaction_id"`
	UserID        uint         `json:"user_id"`
	TotalAmount   models.Money `json:"total_amount"`
	ItemCount     int          `json:"item_count"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// TransactionService runs checkout and reads the transaction log.
type TransactionService struct {
	transactions repositories.TransactionRepository
	uow          repositories.UnitOfWork
	publisher    EventPublisher
	metrics      *metrics.Metrics
}

// NewTransactionService creates a new TransactionService. publisher and m may be nil.
func NewTransactionService(transactions repositories.TransactionRepository, uow repositories.UnitOfWork, publisher EventPublisher, m *metrics.Metrics) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		uow:          uow,
		publisher:    publisher,
		metrics:      m,
	}
}

// Checkout turns the user's cart into a completed transaction. Reading the
// cart, validating stock, writing the transaction, decrementing stock and
// clearing the cart all happen in one unit of work: on any error nothing is
// written.
func (s *TransactionService) Checkout(ctx context.Context, userID uint) (*models.Transaction, error) {
	start := time.Now()

	var txn *models.Transaction
	err := s.uow.Do(ctx, func(r repositories.Repositories) error {
		items, err := r.Carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperrors.ErrEmptyCart
		}

		// Fail fast before any write.
		for _, item := range items {
			if item.Quantity > item.Product.Stock {
				return insufficientStockFor(item)
			}
		}

		txn = &models.Transaction{
			UserID:      userID,
			TotalAmount: models.CartTotal(items),
			Status:      models.TransactionCompleted,
			Items:       models.SnapshotItems(items),
		}
		if err := r.Transactions.Create(ctx, txn); err != nil {
			return err
		}

		// The conditional decrement re-checks stock at write time, closing
		// the gap with the validation above under concurrent checkouts.
		for _, item := range items {
			if err := r.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if apperrors.IsKind(err, apperrors.KindInsufficientStock) {
					return insufficientStockFor(item)
				}
				return err
			}
		}

		removed, err := r.Carts.DeleteByUser(ctx, userID)
		if err != nil {
			return err
		}
		if removed != int64(len(items)) {
			return apperrors.Conflict("Cart changed during checkout, please retry", nil)
		}
		return nil
	})

	s.metrics.ObserveCheckout(checkoutOutcome(err), time.Since(start))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			log.Printf("Checkout failed for user %d: %v", userID, err)
		}
		return nil, err
	}

	s.publishCompleted(txn)
	return txn, nil
}

// GetTransaction returns one of the user's own transactions.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	return s.transactions.GetByID(ctx, id, userID)
}

// ListTransactions returns the user's transactions, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

func insufficientStockFor(item models.CartItem) error {
	return apperrors.InsufficientStock(fmt.Sprintf("Insufficient stock for product: %s", item.Product.Name))
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCompleted
	case apperrors.KindOf(err) == apperrors.KindInternal:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeRejected
	}
}

// publishCompleted is best effort: the transaction is already committed, so a
// broker failure is logged and never reported to the caller.
func (s *TransactionService) publishCompleted(txn *models.Transaction) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(TransactionCompletedEvent{
		EventID:       uuid.NewString(),
		EventType:     EventTransactionCompleted,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		TotalAmount:   txn.TotalAmount,
		ItemCount:     len(txn.Items),
		OccurredAt:    txn.CreatedAt,
	})
	if err != nil {
		log.Printf("Failed to marshal transaction event: %v", err)
		return
	}
	if err := s.publisher.PublishEvent(EventTransactionCompleted, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for transaction %d: %v", EventTransactionCompleted, txn.ID, err)
		return
	}
	log.Printf("Published %s event for transaction %d", EventTransactionCompleted, txn.ID)
}
