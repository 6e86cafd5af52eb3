package testutil

import (
	"testing"

	"casefile/internal/database"
	"casefile/internal/database/migrations"
)

// NewTestStore creates a new in-memory SQLite catalog with the schema
// migrated to the latest version. The store is automatically closed when the
// test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate schema: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(sqlDB)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
