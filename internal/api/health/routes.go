package health

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnwards/menuseed/internal/store"
)

// RegisterRoutes adds /healthz and, when g is non-nil, /metrics. A nil pinger
// reports healthy without touching a store.
func RegisterRoutes(mux *http.ServeMux, p store.Pinger, g prometheus.Gatherer) {
	h := &Handler{pinger: p}

	mux.HandleFunc("GET /healthz", h.Check)
	if g != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
}
