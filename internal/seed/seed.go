package seed

import (
	"context"
	"fmt"

	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/domain"
)

// Seed installs every table definition the application needs under the given
// ids. It is idempotent: existing rows are left untouched.
func Seed(ctx context.Context, db *database.DB, names domain.Tables) error {
	if err := Tables(ctx, db, MenuTables(names)); err != nil {
		return fmt.Errorf("seed tables: %w", err)
	}
	return nil
}
