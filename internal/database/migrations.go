package database

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice. Statements must run
// unchanged on both SQLite and Postgres.
var migrations = [][]string{
	// Migration 1: table definitions and record storage
	{
		`CREATE TABLE table_defs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE column_defs (
			table_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			required BOOLEAN NOT NULL DEFAULT FALSE,
			is_unique BOOLEAN NOT NULL DEFAULT FALSE,
			size INTEGER NOT NULL DEFAULT 0,
			min_value DOUBLE PRECISION,
			max_value DOUBLE PRECISION,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (table_id, name),
			FOREIGN KEY (table_id) REFERENCES table_defs(id)
		)`,

		`CREATE TABLE records (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (table_id) REFERENCES table_defs(id)
		)`,
		`CREATE INDEX idx_records_table ON records(table_id, id)`,

		`CREATE TABLE record_values (
			record_id TEXT NOT NULL,
			column_name TEXT NOT NULL,
			value TEXT,
			PRIMARY KEY (record_id, column_name),
			FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX idx_record_values_value ON record_values(column_name, value)`,

		`CREATE TABLE unique_values (
			table_id TEXT NOT NULL,
			column_name TEXT NOT NULL,
			value TEXT NOT NULL,
			record_id TEXT NOT NULL,
			PRIMARY KEY (table_id, column_name, value),
			FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
		)`,
	},
}
