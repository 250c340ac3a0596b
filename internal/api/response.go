package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// RowCreateRequest is the body of POST /v1/tables/{table}/rows. An empty ID
// asks the store to assign one.
type RowCreateRequest struct {
	ID   string         `json:"id,omitempty"`
	Data map[string]any `json:"data"`
}

// CollectionResponse is an unpaged list response.
type CollectionResponse[T any] struct {
	Results []T `json:"results"`
	Total   int `json:"total"`
}

// NewCollection wraps items, replacing a nil slice with an empty one so the
// body always carries an array.
func NewCollection[T any](items []T) CollectionResponse[T] {
	if items == nil {
		items = []T{}
	}
	return CollectionResponse[T]{Results: items, Total: len(items)}
}

// QueryInt parses an integer query parameter. Missing values return def;
// malformed values return ok=false.
func QueryInt(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
