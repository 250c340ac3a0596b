package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/johnwards/menuseed/internal/domain"
)

// MemoryRowStore is an in-process RowStore enforcing the same schemas as the
// SQL store. It backs tests and the "memory" driver.
type MemoryRowStore struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

type memTable struct {
	def    domain.TableDef
	rows   map[string]*domain.Row
	unique map[string]map[string]string // column -> value -> row id
}

// NewMemoryRowStore creates a store holding the given tables.
func NewMemoryRowStore(defs ...domain.TableDef) *MemoryRowStore {
	s := &MemoryRowStore{tables: make(map[string]*memTable, len(defs))}
	for _, def := range defs {
		s.tables[def.ID] = &memTable{
			def:    def,
			rows:   make(map[string]*domain.Row),
			unique: make(map[string]map[string]string),
		}
	}
	return s
}

// Ping always succeeds.
func (s *MemoryRowStore) Ping(context.Context) error { return nil }

// Tables returns every table definition ordered by id.
func (s *MemoryRowStore) Tables(context.Context) ([]domain.TableDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]domain.TableDef, 0, len(s.tables))
	for _, id := range slices.Sorted(maps.Keys(s.tables)) {
		defs = append(defs, s.tables[id].def)
	}
	return defs, nil
}

// Table returns a table definition.
func (s *MemoryRowStore) Table(_ context.Context, id string) (*domain.TableDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", id, ErrNotFound)
	}
	def := t.def
	return &def, nil
}

// CreateRow validates fields against the table schema and inserts a row.
func (s *MemoryRowStore) CreateRow(ctx context.Context, table, id string, fields map[string]any) (*domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	values, err := normalizeFields(&t.def, fields)
	if err != nil {
		return nil, err
	}
	rowID, err := resolveID(id)
	if err != nil {
		return nil, err
	}
	for _, rows := range s.tables {
		if _, dup := rows.rows[rowID]; dup {
			return nil, &ConflictError{Table: table, Value: rowID}
		}
	}
	for _, col := range t.def.Columns {
		v, ok := values[col.Name]
		if !col.Unique || !ok {
			continue
		}
		if _, dup := t.unique[col.Name][encodeValue(v)]; dup {
			return nil, &ConflictError{Table: table, Column: col.Name, Value: encodeValue(v)}
		}
	}

	ts := now()
	row := &domain.Row{ID: rowID, Table: table, Data: values, CreatedAt: ts, UpdatedAt: ts}
	t.rows[rowID] = row
	for _, col := range t.def.Columns {
		v, ok := values[col.Name]
		if !col.Unique || !ok {
			continue
		}
		if t.unique[col.Name] == nil {
			t.unique[col.Name] = make(map[string]string)
		}
		t.unique[col.Name][encodeValue(v)] = rowID
	}
	return cloneRow(row), nil
}

// GetRow retrieves a single row by id.
func (s *MemoryRowStore) GetRow(ctx context.Context, table, id string) (*domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, fmt.Errorf("row %s in %s: %w", id, table, ErrNotFound)
	}
	return cloneRow(row), nil
}

// DeleteRow removes a row and its unique index entries.
func (s *MemoryRowStore) DeleteRow(ctx context.Context, table, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	row, ok := t.rows[id]
	if !ok {
		return fmt.Errorf("row %s in %s: %w", id, table, ErrNotFound)
	}
	for col, idx := range t.unique {
		if v, ok := row.Data[col]; ok {
			delete(idx, encodeValue(v))
		}
	}
	delete(t.rows, id)
	return nil
}

// ListRows returns a page of rows ordered by id.
func (s *MemoryRowStore) ListRows(ctx context.Context, table string, opts domain.ListOpts) (*domain.RowPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	if err := validateFilters(&t.def, opts.Filters); err != nil {
		return nil, err
	}
	limit := ClampLimit(opts.Limit)

	page := &domain.RowPage{Rows: []*domain.Row{}}
	for _, id := range slices.Sorted(maps.Keys(t.rows)) {
		row := t.rows[id]
		if !rowMatches(row, opts.Filters) {
			continue
		}
		page.Total++
		if opts.After != "" && id <= opts.After {
			continue
		}
		if len(page.Rows) == limit {
			page.HasMore = true
			continue
		}
		page.Rows = append(page.Rows, cloneRow(row))
	}
	if page.HasMore {
		page.After = page.Rows[len(page.Rows)-1].ID
	}
	return page, nil
}

func rowMatches(row *domain.Row, filters []domain.Filter) bool {
	for _, f := range filters {
		v, ok := row.Data[f.Column]
		if !matches(f, encodeValue(v), ok) {
			return false
		}
	}
	return true
}

func cloneRow(r *domain.Row) *domain.Row {
	c := *r
	c.Data = maps.Clone(r.Data)
	return &c
}
