package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/logging"
	"github.com/johnwards/menuseed/internal/reseed"
)

// setupEnv points the CLI at a fresh SQLite file and in-memory blobs.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	dsn := filepath.Join(dir, "menuseed.db")
	t.Setenv("MENUSEED_DB_DRIVER", "sqlite")
	t.Setenv("MENUSEED_DB_DSN", dsn)
	t.Setenv("MENUSEED_BLOB_DRIVER", "memory")
	t.Setenv("MENUSEED_LOG_LEVEL", "error")
	t.Setenv("MENUSEED_DATASET", "")
	t.Setenv("MENUSEED_AUTH_TOKEN", "")
	return dsn
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCmd(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if strings.TrimSpace(out) != "ok" {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "migrate", "--db-driver", "memory"); err == nil {
		t.Error("migrate with memory driver: expected error")
	}
}

func TestReseedThenQuery(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "reseed", "--concurrency", "2")
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if !strings.Contains(out, "menu items: 12") {
		t.Errorf("reseed output missing menu total:\n%s", out)
	}
	if !strings.Contains(out, "create_menu_items") {
		t.Errorf("reseed output missing stage table:\n%s", out)
	}

	out, err = execute(t, "menu", "--category", "pizzas")
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(out, "Margherita") || !strings.Contains(out, "$9.99") || !strings.Contains(out, "Pizzas") {
		t.Errorf("menu output:\n%s", out)
	}
	if strings.Contains(out, "Classic Cheeseburger") {
		t.Errorf("category filter leaked burgers:\n%s", out)
	}

	out, err = execute(t, "menu", "--query", "chicken", "--limit", "2")
	if err != nil {
		t.Fatalf("menu query: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(out), "\n"); lines != 2 {
		t.Errorf("expected header + 2 rows, got:\n%s", out)
	}

	out, err = execute(t, "categories")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	for _, name := range []string{"Burgers", "Pizzas", "Bowls"} {
		if !strings.Contains(out, name) {
			t.Errorf("categories output missing %s:\n%s", name, out)
		}
	}
}

func TestReseedInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("MENUSEED_CONCURRENCY", "zero")

	if _, err := execute(t, "reseed"); err == nil || !strings.Contains(err.Error(), "MENUSEED_CONCURRENCY") {
		t.Errorf("expected concurrency error, got %v", err)
	}
}

func TestServe(t *testing.T) {
	setupEnv(t)

	var out bytes.Buffer
	c := &cli{cfg: config.Load(), out: &out, errOut: &out}
	c.log = logging.New("error", "text", &out)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln, true) }()

	base := "http://" + ln.Addr().String()
	var resp *http.Response
	for i := 0; i < 100; i++ {
		resp, err = http.Get(base + "/v1/categories")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("get categories: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("categories: status %d", resp.StatusCode)
	}

	metrics, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	var body bytes.Buffer
	_, _ = body.ReadFrom(metrics.Body)
	_ = metrics.Body.Close()
	if !strings.Contains(body.String(), "menuseed_reseed_runs_total") {
		t.Error("metrics missing reseed run counter")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestPrintReportShowsEraseFailures(t *testing.T) {
	var out bytes.Buffer
	c := &cli{out: &out}
	printReport(c, &reseed.Report{
		Erased: []reseed.EraseResult{
			{Target: "menu", Listed: 2, Deleted: 1, Failures: []reseed.RowResult{
				{Op: reseed.OpDelete, Table: "menu", ID: "m1", Err: errors.New("timeout")},
			}},
			{Target: "categories", ListErr: errors.New("connection refused")},
		},
		MenuTotal: 3,
	})

	got := out.String()
	for _, want := range []string{
		"failed to delete menu/m1: timeout",
		"failed to list categories: connection refused",
		"run was partial",
		"menu items: 3",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
