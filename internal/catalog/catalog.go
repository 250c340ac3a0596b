// Package catalog is the read side of the menu tables.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
)

// DefaultMenuLimit caps menu queries that do not set a limit.
const DefaultMenuLimit = 50

// MenuQuery filters menu items. Blank fields are ignored.
type MenuQuery struct {
	Category string // category row id
	Query    string // substring of the item name
	Limit    int
}

// Catalog reads categories, customizations and menu items.
type Catalog struct {
	rows   store.RowStore
	tables domain.Tables
}

// New creates a Catalog over rows.
func New(rows store.RowStore, tables domain.Tables) *Catalog {
	if tables == (domain.Tables{}) {
		tables = domain.DefaultTables()
	}
	return &Catalog{rows: rows, tables: tables}
}

// Menu returns menu items matching q, at most q.Limit of them.
func (c *Catalog) Menu(ctx context.Context, q MenuQuery) ([]domain.MenuRecord, error) {
	opts := domain.ListOpts{Limit: q.Limit}
	if opts.Limit <= 0 {
		opts.Limit = DefaultMenuLimit
	}
	if cat := strings.TrimSpace(q.Category); cat != "" {
		opts.Filters = append(opts.Filters, domain.Equal("categories", cat))
	}
	if name := strings.TrimSpace(q.Query); name != "" {
		opts.Filters = append(opts.Filters, domain.Contains("name", name))
	}

	var out []domain.MenuRecord
	for len(out) < opts.Limit {
		page, err := c.rows.ListRows(ctx, c.tables.Menu, opts)
		if err != nil {
			return nil, fmt.Errorf("menu: %w", err)
		}
		for _, r := range page.Rows {
			if len(out) == opts.Limit {
				break
			}
			out = append(out, domain.MenuFromRow(r))
		}
		if !page.HasMore {
			break
		}
		opts.After = page.After
	}
	if out == nil {
		out = []domain.MenuRecord{}
	}
	return out, nil
}

// Categories returns every category.
func (c *Catalog) Categories(ctx context.Context) ([]domain.CategoryRecord, error) {
	rows, err := store.ListAll(ctx, c.rows, c.tables.Categories)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	out := make([]domain.CategoryRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CategoryFromRow(r))
	}
	return out, nil
}

// Customizations returns the customizations linked to a menu item through
// the join table. Links to missing customizations are skipped.
func (c *Catalog) Customizations(ctx context.Context, menuID string) ([]domain.CustomizationRecord, error) {
	if _, err := c.rows.GetRow(ctx, c.tables.Menu, menuID); err != nil {
		return nil, fmt.Errorf("menu item %s: %w", menuID, err)
	}
	joins, err := store.ListAll(ctx, c.rows, c.tables.MenuCustomizations, domain.Equal("menu", menuID))
	if err != nil {
		return nil, fmt.Errorf("customizations of %s: %w", menuID, err)
	}

	out := make([]domain.CustomizationRecord, 0, len(joins))
	for _, j := range joins {
		row, err := c.rows.GetRow(ctx, c.tables.Customizations, j.String("customizations"))
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("customization %s: %w", j.String("customizations"), err)
		}
		out = append(out, domain.CustomizationFromRow(row))
	}
	return out, nil
}
