// Package server assembles the HTTP API from its route groups.
package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/admin"
	"github.com/johnwards/menuseed/internal/api/files"
	"github.com/johnwards/menuseed/internal/api/health"
	"github.com/johnwards/menuseed/internal/api/menu"
	"github.com/johnwards/menuseed/internal/api/rows"
	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/catalog"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
)

// Deps are the collaborators the API serves. Blobs, Reseeder and Gatherer
// are optional; their routes are left out when nil.
type Deps struct {
	Rows        store.RowStore
	Blobs       blob.Store
	Tables      domain.Tables
	Reseeder    admin.Reseeder
	Gatherer    prometheus.Gatherer
	AuthToken   string
	CORSOrigins []string
}

// New returns the full middleware-wrapped handler.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	rows.RegisterRoutes(mux, d.Rows)
	menu.RegisterRoutes(mux, catalog.New(d.Rows, d.Tables))
	if d.Blobs != nil {
		files.RegisterRoutes(mux, d.Blobs)
	}
	if d.Reseeder != nil {
		admin.RegisterRoutes(mux, d.Reseeder)
	}
	pinger, _ := d.Rows.(store.Pinger)
	health.RegisterRoutes(mux, pinger, d.Gatherer)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(
			fmt.Sprintf("No route found for %s %s", r.Method, r.URL.Path),
			api.CorrelationID(r.Context()),
		))
	})

	return api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.CORS(d.CORSOrigins),
		api.Auth(d.AuthToken),
		api.Logging(),
	)
}
