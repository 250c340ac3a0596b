package admin

import (
	"net/http"
)

// RegisterRoutes registers all admin API endpoints on the mux.
func RegisterRoutes(mux *http.ServeMux, r Reseeder) {
	h := &Handler{reseeder: r}

	mux.HandleFunc("POST /_admin/reseed", h.Reseed)
	mux.HandleFunc("GET /_admin/reseed", h.Last)
}
