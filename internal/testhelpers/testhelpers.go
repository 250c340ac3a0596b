package testhelpers

import (
	"context"
	"testing"

	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/seed"
)

// NewTestDB returns an in-memory SQLite database configured the same way as
// production. The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewSeededDB returns a migrated in-memory database with the menu table
// definitions installed.
func NewSeededDB(t *testing.T) *database.DB {
	t.Helper()

	db := NewTestDB(t)
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := seed.Tables(ctx, db, seed.DefaultSchemas()); err != nil {
		t.Fatalf("seed tables: %v", err)
	}
	return db
}
