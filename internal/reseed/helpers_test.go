package reseed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/dataset"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/seed"
	"github.com/johnwards/menuseed/internal/store"
)

var errInjected = errors.New("injected failure")

// faultyStore wraps a RowStore and fails selected operations.
type faultyStore struct {
	store.RowStore

	mu         sync.Mutex
	failCreate func(table string, fields map[string]any) bool
	failList   func(table string) bool
	failDelete func(table, id string) bool
	creates    int
}

func (f *faultyStore) CreateRow(ctx context.Context, table, id string, fields map[string]any) (*domain.Row, error) {
	f.mu.Lock()
	f.creates++
	fail := f.failCreate != nil && f.failCreate(table, fields)
	f.mu.Unlock()
	if fail {
		return nil, &store.NetworkError{Op: "create " + table, Err: errInjected}
	}
	return f.RowStore.CreateRow(ctx, table, id, fields)
}

func (f *faultyStore) ListRows(ctx context.Context, table string, opts domain.ListOpts) (*domain.RowPage, error) {
	if f.failList != nil && f.failList(table) {
		return nil, &store.NetworkError{Op: "list " + table, Err: errInjected}
	}
	return f.RowStore.ListRows(ctx, table, opts)
}

func (f *faultyStore) DeleteRow(ctx context.Context, table, id string) error {
	if f.failDelete != nil && f.failDelete(table, id) {
		return &store.NetworkError{Op: "delete " + table, Err: errInjected}
	}
	return f.RowStore.DeleteRow(ctx, table, id)
}

// faultyBlobs wraps a blob.Store and fails selected operations.
type faultyBlobs struct {
	blob.Store

	failList   bool
	failDelete func(bucket, id string) bool
}

func (f *faultyBlobs) ListFiles(ctx context.Context, bucket string) ([]domain.File, error) {
	if f.failList {
		return nil, errInjected
	}
	return f.Store.ListFiles(ctx, bucket)
}

func (f *faultyBlobs) DeleteFile(ctx context.Context, bucket, id string) error {
	if f.failDelete != nil && f.failDelete(bucket, id) {
		return errInjected
	}
	return f.Store.DeleteFile(ctx, bucket, id)
}

func newMemoryStore() *store.MemoryRowStore {
	return store.NewMemoryRowStore(seed.DefaultSchemas()...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scenarioDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Categories:     []dataset.Category{{Name: "Pizza"}},
		Customizations: []dataset.Customization{{Name: "Extra Cheese", Price: 150, Type: "topping"}},
		Menu: []dataset.MenuItem{{
			Name:           "Margherita",
			Price:          9.99,
			Rating:         4.7,
			CategoryName:   "Pizza",
			Customizations: []string{"Extra Cheese"},
		}},
	}
}

func listAll(t *testing.T, s store.RowStore, table string) []*domain.Row {
	t.Helper()
	rows, err := store.ListAll(context.Background(), s, table)
	if err != nil {
		t.Fatalf("list %s: %v", table, err)
	}
	return rows
}
