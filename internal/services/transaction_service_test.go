package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sembako/internal/apperrors"
	"sembako/internal/database/databasetest"
	"sembako/internal/metrics"
	"sembako/internal/models"
	"sembako/internal/repositories"
	"sembako/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	db        *gorm.DB
	repos     repositories.Repositories
	service   *services.TransactionService
	publisher *MockPublisher
	buyer     *models.User
	other     *models.User
	beras     *models.Product
	gula      *models.Product
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	db := databasetest.New(t)
	repos := repositories.NewGORMRepositories(db)
	ctx := context.Background()

	f := &checkoutFixture{
		db:        db,
		repos:     repos,
		publisher: new(MockPublisher),
		buyer:     &models.User{Username: "testuser", Email: "testuser@example.com", Password: "hash"},
		other:     &models.User{Username: "user2", Email: "user2@example.com", Password: "hash"},
		beras:     &models.Product{Name: "Beras", Price: models.NewMoney(75000), Stock: 100, Category: "Bahan Pokok"},
		gula:      &models.Product{Name: "Gula Pasir", Price: models.NewMoney(15000), Stock: 80, Category: "Bahan Pokok"},
	}
	require.NoError(t, repos.Users.Create(ctx, f.buyer))
	require.NoError(t, repos.Users.Create(ctx, f.other))
	require.NoError(t, repos.Products.Create(ctx, f.beras))
	require.NoError(t, repos.Products.Create(ctx, f.gula))

	f.service = services.NewTransactionService(repos.Transactions, repositories.NewGORMUnitOfWork(db), f.publisher, metrics.New("sembako_test"))
	return f
}

func (f *checkoutFixture) addToCart(t *testing.T, user *models.User, product *models.Product, quantity int) {
	t.Helper()
	require.NoError(t, f.repos.Carts.Create(context.Background(), &models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: quantity}))
}

func (f *checkoutFixture) stockOf(t *testing.T, product *models.Product) int {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	return p.Stock
}

func (f *checkoutFixture) cartSize(t *testing.T, user *models.User) int {
	t.Helper()
	items, err := f.repos.Carts.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	return len(items)
}

func (f *checkoutFixture) transactionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	return count
}

func (f *checkoutFixture) assertUntouched(t *testing.T, cartLines int) {
	t.Helper()
	assert.Equal(t, 100, f.stockOf(t, f.beras))
	assert.Equal(t, 80, f.stockOf(t, f.gula))
	assert.Equal(t, cartLines, f.cartSize(t, f.buyer))
	assert.Equal(t, int64(0), f.transactionCount(t))
}

func TestCheckout_BerasAndGulaPasir(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.buyer, f.beras, 2)
	f.addToCart(t, f.buyer, f.gula, 1)

	var published []byte
	f.publisher.On("PublishEvent", services.EventTransactionCompleted, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]byte) }).
		Return(nil).Once()

	txn, err := f.service.Checkout(ctx, f.buyer.ID)
	require.NoError(t, err)

	assert.Equal(t, "165000.00", txn.TotalAmount.StringFixed(2))
	assert.Equal(t, models.TransactionCompleted, txn.Status)
	require.Len(t, txn.Items, 2)
	assert.Equal(t, "Beras", txn.Items[0].Name)
	assert.Equal(t, "150000.00", txn.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "Gula Pasir", txn.Items[1].Name)
	assert.Equal(t, "15000.00", txn.Items[1].Subtotal.StringFixed(2))

	assert.Equal(t, 98, f.stockOf(t, f.beras))
	assert.Equal(t, 79, f.stockOf(t, f.gula))
	assert.Equal(t, 0, f.cartSize(t, f.buyer))

	stored, err := f.service.GetTransaction(ctx, f.buyer.ID, txn.ID)
	require.NoError(t, err)
	assert.True(t, txn.TotalAmount.Equal(stored.TotalAmount))
	assert.Len(t, stored.Items, 2)

	f.publisher.AssertExpectations(t)
	var event services.TransactionCompletedEvent
	require.NoError(t, json.Unmarshal(published, &event))
	assert.Equal(t, txn.ID, event.TransactionID)
	assert.Equal(t, f.buyer.ID, event.UserID)
	assert.Equal(t, 2, event.ItemCount)
	assert.NotEmpty(t, event.EventID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.service.Checkout(context.Background(), f.buyer.ID)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.Equal(t, int64(0), f.transactionCount(t))
	f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestCheckout_InsufficientStockWritesNothing(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addToCart(t, f.buyer, f.beras, 2)
	f.addToCart(t, f.buyer, f.gula, 81)

	_, err := f.service.Checkout(context.Background(), f.buyer.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))
	assert.Contains(t, err.Error(), "Gula Pasir")

	f.assertUntouched(t, 2)
	f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestCheckout_RollsBackWhenAWriteFails(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addToCart(t, f.buyer, f.beras, 2)
	f.addToCart(t, f.buyer, f.gula, 1)

	// Let the first stock decrement through and fail the second one, after
	// the transaction row has already been inserted.
	diskFull := errors.New("disk full")
	decrements := 0
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:fail_second_decrement", func(tx *gorm.DB) {
		if tx.Statement.Table != "products" {
			return
		}
		decrements++
		if decrements == 2 {
			_ = tx.AddError(diskFull)
		}
	}))

	_, err := f.service.Checkout(context.Background(), f.buyer.ID)
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, 2, decrements)

	f.assertUntouched(t, 2)
	f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
}

func TestCheckout_CancelledContextWritesNothing(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addToCart(t, f.buyer, f.beras, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Checkout(ctx, f.buyer.ID)
	assert.Error(t, err)
	f.assertUntouched(t, 1)
}

func TestCheckout_SnapshotSurvivesCatalogChanges(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.buyer, f.beras, 1)
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	txn, err := f.service.Checkout(ctx, f.buyer.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.beras.ID).
		Updates(map[string]any{"name": "Beras Premium", "price": models.NewMoney(99000)}).Error)

	stored, err := f.service.GetTransaction(ctx, f.buyer.ID, txn.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Beras", stored.Items[0].Name)
	assert.Equal(t, "75000.00", stored.Items[0].Price.StringFixed(2))
	assert.Equal(t, "75000.00", stored.TotalAmount.StringFixed(2))
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addToCart(t, f.buyer, f.beras, 1)
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	txn, err := f.service.Checkout(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)
	assert.Equal(t, 99, f.stockOf(t, f.beras))
}

func TestGetTransaction_OnlyOwner(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.buyer, f.beras, 1)
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	txn, err := f.service.Checkout(ctx, f.buyer.ID)
	require.NoError(t, err)

	own, err := f.service.GetTransaction(ctx, f.buyer.ID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, own.ID)

	_, err = f.service.GetTransaction(ctx, f.other.ID, txn.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	mine, err := f.service.ListTransactions(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.service.ListTransactions(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

// The following cases drive write-time races through mocks, since a single
// test goroutine cannot interleave two real database transactions.

func mockCheckout() (*services.TransactionService, *MockCartRepository, *MockProductRepository, *MockTransactionRepository) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	txns := new(MockTransactionRepository)
	uow := passthroughUnitOfWork{repos: repositories.Repositories{Carts: carts, Products: products, Transactions: txns}}
	return services.NewTransactionService(txns, uow, nil, nil), carts, products, txns
}

func raceCart() []models.CartItem {
	return []models.CartItem{
		{ID: 1, UserID: 1, ProductID: 1, Quantity: 2, Product: models.Product{ID: 1, Name: "Beras", Price: models.NewMoney(75000), Stock: 10}},
		{ID: 2, UserID: 1, ProductID: 3, Quantity: 1, Product: models.Product{ID: 3, Name: "Gula Pasir", Price: models.NewMoney(15000), Stock: 1}},
	}
}

func TestCheckout_StockRecheckedAtWriteTime(t *testing.T) {
	service, carts, products, txns := mockCheckout()

	carts.On("ListByUser", mock.Anything, uint(1)).Return(raceCart(), nil).Once()
	txns.On("Create", mock.Anything, mock.AnythingOfType("*models.Transaction")).Return(nil).Once()
	products.On("DecrementStock", mock.Anything, uint(1), 2).Return(nil).Once()
	// Another checkout took the last Gula Pasir after our read.
	products.On("DecrementStock", mock.Anything, uint(3), 1).Return(apperrors.InsufficientStock("Insufficient stock for product ID 3")).Once()

	_, err := service.Checkout(context.Background(), 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))
	assert.Contains(t, err.Error(), "Gula Pasir")
	carts.AssertNotCalled(t, "DeleteByUser", mock.Anything, mock.Anything)
	products.AssertExpectations(t)
}

func TestCheckout_ConflictWhenCartChangesConcurrently(t *testing.T) {
	service, carts, products, txns := mockCheckout()

	carts.On("ListByUser", mock.Anything, uint(1)).Return(raceCart(), nil).Once()
	txns.On("Create", mock.Anything, mock.AnythingOfType("*models.Transaction")).Return(nil).Once()
	products.On("DecrementStock", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	carts.On("DeleteByUser", mock.Anything, uint(1)).Return(int64(1), nil).Once()

	_, err := service.Checkout(context.Background(), 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	carts.AssertExpectations(t)
}
