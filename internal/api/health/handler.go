package health

import (
	"context"
	"net/http"
	"time"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/store"
)

const pingTimeout = 2 * time.Second

// Handler reports whether the server and its row store are reachable.
type Handler struct {
	pinger store.Pinger
}

// Status is the body of a healthy response.
type Status struct {
	Status string `json:"status"`
}

// Check handles GET /healthz.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			api.WriteError(w, http.StatusServiceUnavailable, &api.Error{
				Status:        "error",
				Message:       err.Error(),
				CorrelationID: api.CorrelationID(r.Context()),
				Category:      api.CategoryUnavailable,
			})
			return
		}
	}
	api.WriteJSON(w, http.StatusOK, Status{Status: "ok"})
}
