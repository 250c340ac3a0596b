package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/domain"
)

// SQLRowStore implements RowStore on top of the records/record_values tables.
// Every row is one records entry plus one record_values entry per column.
type SQLRowStore struct {
	db *database.DB
}

// NewSQLRowStore creates a new SQLRowStore.
func NewSQLRowStore(db *database.DB) *SQLRowStore {
	return &SQLRowStore{db: db}
}

// Ping checks the database connection.
func (s *SQLRowStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Tables returns every table definition ordered by id.
func (s *SQLRowStore) Tables(ctx context.Context) ([]domain.TableDef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM table_defs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan table: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	defs := make([]domain.TableDef, 0, len(ids))
	for _, id := range ids {
		def, err := s.Table(ctx, id)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, nil
}

// Table loads a table definition with its columns.
func (s *SQLRowStore) Table(ctx context.Context, id string) (*domain.TableDef, error) {
	def := &domain.TableDef{ID: id}
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT name FROM table_defs WHERE id = ?`), id).Scan(&def.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("table %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get table %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT name, type, required, is_unique, size, min_value, max_value
		 FROM column_defs WHERE table_id = ? ORDER BY position, name`), id)
	if err != nil {
		return nil, fmt.Errorf("get columns %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c domain.Column
		var lo, hi sql.NullFloat64
		if err := rows.Scan(&c.Name, &c.Type, &c.Required, &c.Unique, &c.Size, &lo, &hi); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if lo.Valid {
			c.Min = &lo.Float64
		}
		if hi.Valid {
			c.Max = &hi.Float64
		}
		def.Columns = append(def.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return def, nil
}

// CreateRow validates fields against the table schema and inserts a row.
func (s *SQLRowStore) CreateRow(ctx context.Context, table, id string, fields map[string]any) (*domain.Row, error) {
	def, err := s.Table(ctx, table)
	if err != nil {
		return nil, err
	}
	values, err := normalizeFields(def, fields)
	if err != nil {
		return nil, err
	}
	rowID, err := resolveID(id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.db.Rebind(`SELECT 1 FROM records WHERE id = ?`), rowID).Scan(&exists)
	if err == nil {
		return nil, &ConflictError{Table: table, Value: rowID}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check row id: %w", err)
	}

	for _, col := range def.Columns {
		v, ok := values[col.Name]
		if !col.Unique || !ok {
			continue
		}
		text := encodeValue(v)
		err := tx.QueryRowContext(ctx, s.db.Rebind(
			`SELECT 1 FROM unique_values WHERE table_id = ? AND column_name = ? AND value = ?`),
			table, col.Name, text,
		).Scan(&exists)
		if err == nil {
			return nil, &ConflictError{Table: table, Column: col.Name, Value: text}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check unique %s: %w", col.Name, err)
		}
	}

	ts := now()
	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO records (id, table_id, created_at, updated_at) VALUES (?, ?, ?, ?)`),
		rowID, table, ts, ts,
	); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &ConflictError{Table: table, Value: rowID}
		}
		return nil, fmt.Errorf("insert row: %w", err)
	}

	for _, col := range def.Columns {
		v, ok := values[col.Name]
		if !ok {
			continue
		}
		text := encodeValue(v)
		if _, err := tx.ExecContext(ctx, s.db.Rebind(
			`INSERT INTO record_values (record_id, column_name, value) VALUES (?, ?, ?)`),
			rowID, col.Name, text,
		); err != nil {
			return nil, fmt.Errorf("set %s: %w", col.Name, err)
		}
		if col.Unique {
			if _, err := tx.ExecContext(ctx, s.db.Rebind(
				`INSERT INTO unique_values (table_id, column_name, value, record_id) VALUES (?, ?, ?, ?)`),
				table, col.Name, text, rowID,
			); err != nil {
				// A concurrent create can claim the value after the check above.
				if database.IsUniqueViolation(err) {
					return nil, &ConflictError{Table: table, Column: col.Name, Value: text}
				}
				return nil, fmt.Errorf("index unique %s: %w", col.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	return &domain.Row{ID: rowID, Table: table, Data: values, CreatedAt: ts, UpdatedAt: ts}, nil
}

// GetRow retrieves a single row by id.
func (s *SQLRowStore) GetRow(ctx context.Context, table, id string) (*domain.Row, error) {
	def, err := s.Table(ctx, table)
	if err != nil {
		return nil, err
	}

	row := &domain.Row{Table: table}
	err = s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT id, created_at, updated_at FROM records WHERE id = ? AND table_id = ?`), id, table,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("row %s in %s: %w", id, table, ErrNotFound)
		}
		return nil, fmt.Errorf("get row %s: %w", id, err)
	}

	row.Data, err = s.values(ctx, def, id)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteRow removes a row. Its values and unique index entries cascade.
func (s *SQLRowStore) DeleteRow(ctx context.Context, table, id string) error {
	if _, err := s.Table(ctx, table); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM records WHERE id = ? AND table_id = ?`), id, table)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("row %s in %s: %w", id, table, ErrNotFound)
	}
	return nil
}

// ListRows returns a page of rows ordered by id. Total counts every row
// matching the filters.
func (s *SQLRowStore) ListRows(ctx context.Context, table string, opts domain.ListOpts) (*domain.RowPage, error) {
	def, err := s.Table(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := validateFilters(def, opts.Filters); err != nil {
		return nil, err
	}
	limit := ClampLimit(opts.Limit)

	where, args := buildFilterClauses(table, opts.Filters)

	page := &domain.RowPage{Rows: []*domain.Row{}}
	if err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT COUNT(*) FROM records r`+where), args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	query := `SELECT r.id, r.created_at, r.updated_at FROM records r` + where
	if opts.After != "" {
		query += ` AND r.id > ?`
		args = append(args, opts.After)
	}
	// Fetch one extra to determine if there is a next page.
	query += ` ORDER BY r.id ASC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	for rows.Next() {
		row := &domain.Row{Table: table}
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan row: %w", err)
		}
		page.Rows = append(page.Rows, row)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	if len(page.Rows) > limit {
		page.HasMore = true
		page.After = page.Rows[limit-1].ID
		page.Rows = page.Rows[:limit]
	}

	for _, row := range page.Rows {
		row.Data, err = s.values(ctx, def, row.ID)
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}

func (s *SQLRowStore) values(ctx context.Context, def *domain.TableDef, id string) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT column_name, value FROM record_values WHERE record_id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	data := make(map[string]any)
	for rows.Next() {
		var name string
		var value sql.NullString
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		if !value.Valid {
			continue
		}
		col, ok := def.Column(name)
		if !ok {
			continue
		}
		data[name] = decodeValue(col, value.String)
	}
	return data, rows.Err()
}

// buildFilterClauses returns the WHERE clause restricting records r to a table
// and the given filters, with its args in placeholder order.
func buildFilterClauses(table string, filters []domain.Filter) (string, []any) {
	var sb strings.Builder
	args := []any{table}
	sb.WriteString(` WHERE r.table_id = ?`)

	for _, f := range filters {
		switch f.Operator {
		case domain.OpEqual:
			sb.WriteString(` AND EXISTS (SELECT 1 FROM record_values v WHERE v.record_id = r.id AND v.column_name = ? AND v.value = ?)`)
			args = append(args, f.Column, f.Value)
		case domain.OpContains:
			sb.WriteString(` AND EXISTS (SELECT 1 FROM record_values v WHERE v.record_id = r.id AND v.column_name = ? AND LOWER(v.value) LIKE ? ESCAPE '\')`)
			args = append(args, f.Column, "%"+escapeLike(strings.ToLower(f.Value))+"%")
		}
	}
	return sb.String(), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
