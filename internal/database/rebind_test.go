package database

import "testing"

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	got := pg.Rebind("SELECT * FROM records WHERE table_id = ? AND id > ? LIMIT ?")
	want := "SELECT * FROM records WHERE table_id = $1 AND id > $2 LIMIT $3"
	if got != want {
		t.Errorf("Rebind = %q, want %q", got, want)
	}

	lite := &DB{driver: DriverSQLite}
	q := "SELECT ? , ?"
	if lite.Rebind(q) != q {
		t.Errorf("sqlite query must be unchanged, got %q", lite.Rebind(q))
	}
}
