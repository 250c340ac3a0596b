package rows_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/rows"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
	"github.com/johnwards/menuseed/internal/testhelpers"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testhelpers.NewSeededDB(t)

	mux := http.NewServeMux()
	rows.RegisterRoutes(mux, store.NewSQLRowStore(db))

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, table, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/tables/"+table+"/rows", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func createCategory(t *testing.T, srv *httptest.Server, name string) domain.Row {
	t.Helper()
	resp := post(t, srv, "categories", `{"data":{"name":"`+name+`","description":"d"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create %s: status %d", name, resp.StatusCode)
	}
	var row domain.Row
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return row
}

func decodeError(t *testing.T, resp *http.Response) api.Error {
	t.Helper()
	var e api.Error
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return e
}

func TestCreateEndpoint(t *testing.T) {
	srv := setupServer(t)

	resp := post(t, srv, "menu", `{"data":{"name":"Classic Burger","price":2500,"rating":4.5,"calories":550,"protein":25,"categories":"unknown"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var row domain.Row
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.ID == "" {
		t.Error("expected non-empty ID")
	}
	if row.Int("price") != 2500 {
		t.Errorf("price = %d, want 2500", row.Int("price"))
	}
	if row.Float("rating") != 4.5 {
		t.Errorf("rating = %v, want 4.5", row.Float("rating"))
	}
}

func TestCreateCustomID(t *testing.T) {
	srv := setupServer(t)

	resp := post(t, srv, "categories", `{"id":"pizzas","data":{"name":"Pizzas"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp = post(t, srv, "categories", `{"id":"pizzas","data":{"name":"Pizzas 2"}}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCreateErrors(t *testing.T) {
	srv := setupServer(t)
	createCategory(t, srv, "Burgers")

	tests := []struct {
		name     string
		table    string
		body     string
		status   int
		category string
	}{
		{"bad json", "categories", `{`, http.StatusBadRequest, api.CategoryValidationError},
		{"missing data", "categories", `{"id":"x"}`, http.StatusBadRequest, api.CategoryValidationError},
		{"unknown column", "categories", `{"data":{"name":"X","colour":"red"}}`, http.StatusBadRequest, api.CategoryValidationError},
		{"rating above bound", "menu", `{"data":{"name":"X","rating":5.6,"categories":"unknown"}}`, http.StatusBadRequest, api.CategoryValidationError},
		{"duplicate unique name", "categories", `{"data":{"name":"Burgers"}}`, http.StatusConflict, api.CategoryConflict},
		{"unknown table", "orders", `{"data":{"name":"X"}}`, http.StatusNotFound, api.CategoryObjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.table, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp).Category; got != tt.category {
				t.Errorf("category = %q, want %q", got, tt.category)
			}
		})
	}
}

func TestGetAndDeleteEndpoints(t *testing.T) {
	srv := setupServer(t)
	created := createCategory(t, srv, "Wraps")

	resp, err := http.Get(srv.URL + "/v1/tables/categories/rows/" + created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/tables/categories/rows/"+created.ID, http.NoBody)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.StatusCode)
	}

	del, err = http.DefaultClient.Do(req.Clone(req.Context()))
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	_ = del.Body.Close()
	if del.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", del.StatusCode)
	}
}

func TestListEndpointPagingAndFilters(t *testing.T) {
	srv := setupServer(t)
	for _, name := range []string{"Burgers", "Pizzas", "Burritos", "Bowls", "Sides"} {
		createCategory(t, srv, name)
	}

	list := func(query url.Values) domain.RowPage {
		t.Helper()
		resp, err := http.Get(srv.URL + "/v1/tables/categories/rows?" + query.Encode())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list: status %d", resp.StatusCode)
		}
		var page domain.RowPage
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return page
	}

	first := list(url.Values{"limit": {"2"}})
	if len(first.Rows) != 2 || !first.HasMore || first.Total != 5 {
		t.Fatalf("first page: rows=%d hasMore=%v total=%d", len(first.Rows), first.HasMore, first.Total)
	}
	second := list(url.Values{"limit": {"2"}, "after": {first.After}})
	if second.Rows[0].ID == first.Rows[0].ID {
		t.Error("second page repeated the first row")
	}

	bur := list(url.Values{"contains.name": {"bur"}})
	if bur.Total != 2 {
		t.Errorf("contains.name=bur: total = %d, want 2", bur.Total)
	}
	exact := list(url.Values{"eq.name": {"Pizzas"}})
	if exact.Total != 1 || exact.Rows[0].String("name") != "Pizzas" {
		t.Errorf("eq.name=Pizzas: got %+v", exact)
	}
	none := list(url.Values{"eq.name": {"Salads"}})
	if none.Rows == nil || len(none.Rows) != 0 {
		t.Errorf("expected empty non-nil rows, got %v", none.Rows)
	}
}

func TestListEndpointBadQuery(t *testing.T) {
	srv := setupServer(t)

	for _, q := range []string{"limit=abc", "eq.colour=red"} {
		resp, err := http.Get(srv.URL + "/v1/tables/categories/rows?" + q)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, resp.StatusCode)
		}
	}
}
