package admin

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/reseed"
)

// Reseeder runs one reseed. *reseed.Orchestrator satisfies it.
type Reseeder interface {
	Run(ctx context.Context) (*reseed.Report, error)
}

// Handler serves the admin API at /_admin/.
type Handler struct {
	reseeder Reseeder

	mu      sync.Mutex
	running bool
	last    *Summary
}

// Failure is one failed row, file or list in a Summary.
type Failure struct {
	Op    string `json:"op"`
	Table string `json:"table"`
	Name  string `json:"name,omitempty"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// Summary is the JSON form of a reseed report.
type Summary struct {
	Status      string    `json:"status"`
	Erased      int       `json:"erased"`
	Created     int       `json:"created"`
	Failed      int       `json:"failed"`
	EraseFailed int       `json:"eraseFailed"`
	MenuTotal   int       `json:"menuTotal"`
	DurationMs  int64     `json:"durationMs"`
	Failures    []Failure `json:"failures,omitempty"`
	FinishedAt  string    `json:"finishedAt"`
}

// Summarize flattens a report for the wire. A run is partial when any
// creation failed or when the erase left rows or files behind.
func Summarize(report *reseed.Report) *Summary {
	s := &Summary{
		Status:     "ok",
		Created:    report.Created(),
		Failed:     report.Failed(),
		MenuTotal:  report.MenuTotal,
		DurationMs: report.Duration.Milliseconds(),
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, e := range report.Erased {
		s.Erased += e.Deleted
	}
	erase := report.EraseFailures()
	s.EraseFailed = len(erase)
	for _, f := range append(erase, report.Failures()...) {
		s.Failures = append(s.Failures, Failure{
			Op:    string(f.Op),
			Table: f.Table,
			Name:  f.Name,
			ID:    f.ID,
			Error: f.Err.Error(),
		})
	}
	if !report.Clean() {
		s.Status = "partial"
	}
	return s
}

// Reseed handles POST /_admin/reseed. Only one run may be in flight.
func (h *Handler) Reseed(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		api.WriteError(w, http.StatusConflict, api.NewConflictError("a reseed is already running", corrID))
		return
	}
	h.running = true
	h.mu.Unlock()

	report, err := h.reseeder.Run(r.Context())

	h.mu.Lock()
	h.running = false
	if err == nil {
		h.last = Summarize(report)
	}
	last := h.last
	h.mu.Unlock()

	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}
	api.WriteJSON(w, http.StatusOK, last)
}

// Last handles GET /_admin/reseed: the summary of the most recent successful
// run.
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("no reseed has completed", api.CorrelationID(r.Context())))
		return
	}
	api.WriteJSON(w, http.StatusOK, last)
}
