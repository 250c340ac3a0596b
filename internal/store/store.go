package store

import (
	"context"
	"fmt"

	"github.com/johnwards/menuseed/internal/domain"
)

// RowStore is a table-oriented record store. Every backend (SQL, memory,
// remote HTTP) implements it.
type RowStore interface {
	ListRows(ctx context.Context, table string, opts domain.ListOpts) (*domain.RowPage, error)
	GetRow(ctx context.Context, table, id string) (*domain.Row, error)
	CreateRow(ctx context.Context, table, id string, fields map[string]any) (*domain.Row, error)
	DeleteRow(ctx context.Context, table, id string) error
}

// Pinger is implemented by stores that can check their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TableStore exposes the table definitions a store enforces.
type TableStore interface {
	Tables(ctx context.Context) ([]domain.TableDef, error)
	Table(ctx context.Context, id string) (*domain.TableDef, error)
}

// Page size limits applied by every backend.
const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListAll follows the After cursor until every row matching filters has been
// read.
func ListAll(ctx context.Context, s RowStore, table string, filters ...domain.Filter) ([]*domain.Row, error) {
	var all []*domain.Row
	opts := domain.ListOpts{Limit: MaxLimit, Filters: filters}
	for {
		page, err := s.ListRows(ctx, table, opts)
		if err != nil {
			return all, fmt.Errorf("list %s: %w", table, err)
		}
		all = append(all, page.Rows...)
		if !page.HasMore || page.After == "" {
			return all, nil
		}
		opts.After = page.After
	}
}
