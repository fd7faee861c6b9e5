// Package databasetest provides throwaway in-memory SQLite databases for tests.
package databasetest

import (
	"fmt"
	"testing"

	"sembako/internal/config"
	"sembako/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated in-memory database private to t. It is closed when t ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
