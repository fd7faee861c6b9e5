package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories bound to one database handle.
// Inside UnitOfWork.Do they are bound to the open database transaction.
type Repositories struct {
	Users        UserRepository
	Products     ProductRepository
	Carts        CartRepository
	Transactions TransactionRepository
}

// NewGORMRepositories binds every GORM repository to db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        NewGORMUserRepository(db),
		Products:     NewGORMProductRepository(db),
		Carts:        NewGORMCartRepository(db),
		Transactions: NewGORMTransactionRepository(db),
	}
}

// UnitOfWork runs fn atomically: if fn returns an error, or ctx is cancelled
// before commit, every write made through repos is rolled back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

// GORMUnitOfWork implements UnitOfWork with a database transaction.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db}
}

// Do runs fn inside a database transaction bound to ctx. The transaction
// commits only if fn returns nil.
func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMRepositories(tx))
	})
}
