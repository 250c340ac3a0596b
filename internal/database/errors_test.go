package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/testhelpers"
)

func TestIsUniqueViolationSQLite(t *testing.T) {
	db := testhelpers.NewSeededDB(t)
	ctx := context.Background()

	insertRecord := func(id string) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO records (id, table_id, created_at, updated_at) VALUES (?, 'categories', 'now', 'now')`, id)
		return err
	}
	insertUnique := func(recordID string) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO unique_values (table_id, column_name, value, record_id) VALUES ('categories', 'name', 'Pizzas', ?)`, recordID)
		return err
	}

	if err := insertRecord("r1"); err != nil {
		t.Fatalf("insert record: %v", err)
	}
	if err := insertRecord("r2"); err != nil {
		t.Fatalf("insert record: %v", err)
	}
	if err := insertUnique("r1"); err != nil {
		t.Fatalf("insert unique: %v", err)
	}

	err := insertUnique("r2")
	if err == nil {
		t.Fatal("expected duplicate unique value to fail")
	}
	if !database.IsUniqueViolation(fmt.Errorf("index unique name: %w", err)) {
		t.Errorf("unique value collision not recognised: %v", err)
	}

	err = insertRecord("r1")
	if err == nil {
		t.Fatal("expected duplicate record id to fail")
	}
	if !database.IsUniqueViolation(err) {
		t.Errorf("primary key collision not recognised: %v", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO records (id, table_id, created_at, updated_at) VALUES ('r3', 'nope', 'now', 'now')`)
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
	if database.IsUniqueViolation(err) {
		t.Errorf("foreign key failure reported as unique violation: %v", err)
	}
}

func TestIsUniqueViolationPostgres(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped", fmt.Errorf("insert row: %w", &pgconn.PgError{Code: "23505"}), true},
		{"foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := database.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
