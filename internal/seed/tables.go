package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/domain"
)

func bound(v float64) *float64 { return &v }

// DefaultSchemas returns the menu table definitions under the stock ids.
func DefaultSchemas() []domain.TableDef {
	return MenuTables(domain.DefaultTables())
}

// MenuTables returns the four menu table definitions under the given ids.
func MenuTables(n domain.Tables) []domain.TableDef {
	return []domain.TableDef{
		{
			ID:   n.Categories,
			Name: "Categories",
			Columns: []domain.Column{
				{Name: "name", Type: domain.TypeString, Required: true, Unique: true, Size: 100},
				{Name: "description", Type: domain.TypeString, Size: 500},
			},
		},
		{
			ID:   n.Customizations,
			Name: "Customizations",
			Columns: []domain.Column{
				{Name: "name", Type: domain.TypeString, Required: true, Unique: true, Size: 100},
				{Name: "price", Type: domain.TypeInteger, Required: true, Min: bound(0)},
				{Name: "type", Type: domain.TypeString, Required: true, Size: 50},
			},
		},
		{
			ID:   n.Menu,
			Name: "Menu",
			Columns: []domain.Column{
				{Name: "name", Type: domain.TypeString, Required: true, Size: 100},
				{Name: "description", Type: domain.TypeString, Size: 1000},
				{Name: "image_url", Type: domain.TypeString, Size: 2000},
				{Name: "price", Type: domain.TypeInteger, Required: true, Min: bound(0)},
				{Name: "rating", Type: domain.TypeDouble, Min: bound(domain.MinRating), Max: bound(domain.MaxRating)},
				{Name: "calories", Type: domain.TypeInteger, Min: bound(0)},
				{Name: "protein", Type: domain.TypeInteger, Min: bound(0)},
				{Name: "categories", Type: domain.TypeString, Required: true, Size: 64},
			},
		},
		{
			ID:   n.MenuCustomizations,
			Name: "Menu Customizations",
			Columns: []domain.Column{
				{Name: "menu", Type: domain.TypeString, Required: true, Size: 64},
				{Name: "customizations", Type: domain.TypeString, Required: true, Size: 64},
			},
		},
	}
}

// Tables installs table and column definitions. It is idempotent: existing
// definitions are left untouched.
func Tables(ctx context.Context, db *database.DB, defs []domain.TableDef) error {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	for _, t := range defs {
		_, err := db.ExecContext(ctx, db.Rebind(
			`INSERT INTO table_defs (id, name, created_at, updated_at)
			 VALUES (?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`),
			t.ID, t.Name, ts, ts,
		)
		if err != nil {
			return fmt.Errorf("seed table %s: %w", t.ID, err)
		}

		for i, c := range t.Columns {
			_, err := db.ExecContext(ctx, db.Rebind(
				`INSERT INTO column_defs (table_id, name, type, required, is_unique, size, min_value, max_value, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (table_id, name) DO NOTHING`),
				t.ID, c.Name, c.Type, c.Required, c.Unique, c.Size, c.Min, c.Max, i,
			)
			if err != nil {
				return fmt.Errorf("seed column %s.%s: %w", t.ID, c.Name, err)
			}
		}
	}

	return nil
}
