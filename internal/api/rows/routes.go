package rows

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/store"
)

// RegisterRoutes adds the table row endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s store.RowStore) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /v1/tables/{table}/rows", h.List)
	mux.HandleFunc("POST /v1/tables/{table}/rows", h.Create)
	mux.HandleFunc("GET /v1/tables/{table}/rows/{rowId}", h.Get)
	mux.HandleFunc("DELETE /v1/tables/{table}/rows/{rowId}", h.Delete)
}

