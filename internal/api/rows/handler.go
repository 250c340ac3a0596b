package rows

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
)

// Handler serves generic table rows.
type Handler struct {
	store store.RowStore
}

// Query parameter prefixes that turn into list filters.
const (
	equalPrefix    = "eq."
	containsPrefix = "contains."
)

// List handles GET /v1/tables/{table}/rows.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	limit, ok := api.QueryInt(r, "limit", store.DefaultLimit)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("limit must be an integer", corrID, nil))
		return
	}

	opts := domain.ListOpts{
		Limit:   limit,
		After:   r.URL.Query().Get("after"),
		Filters: parseFilters(r),
	}
	page, err := h.store.ListRows(r.Context(), r.PathValue("table"), opts)
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	if page.Rows == nil {
		page.Rows = []*domain.Row{}
	}
	api.WriteJSON(w, http.StatusOK, page)
}

// parseFilters collects eq.<column> and contains.<column> parameters in a
// stable order.
func parseFilters(r *http.Request) []domain.Filter {
	var filters []domain.Filter
	q := r.URL.Query()
	for _, key := range slices.Sorted(maps.Keys(q)) {
		for _, value := range q[key] {
			switch {
			case strings.HasPrefix(key, equalPrefix):
				filters = append(filters, domain.Equal(strings.TrimPrefix(key, equalPrefix), value))
			case strings.HasPrefix(key, containsPrefix):
				filters = append(filters, domain.Contains(strings.TrimPrefix(key, containsPrefix), value))
			}
		}
	}
	return filters
}

// Create handles POST /v1/tables/{table}/rows.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var body api.RowCreateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("Invalid input JSON", corrID, nil))
		return
	}
	if body.Data == nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("data is required", corrID, nil))
		return
	}

	row, err := h.store.CreateRow(r.Context(), r.PathValue("table"), body.ID, body.Data)
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, row)
}

// Get handles GET /v1/tables/{table}/rows/{rowId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.GetRow(r.Context(), r.PathValue("table"), r.PathValue("rowId"))
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, row)
}

// Delete handles DELETE /v1/tables/{table}/rows/{rowId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRow(r.Context(), r.PathValue("table"), r.PathValue("rowId")); err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
