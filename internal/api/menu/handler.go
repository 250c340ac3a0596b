package menu

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/catalog"
)

// Handler serves the read-only menu API.
type Handler struct {
	catalog *catalog.Catalog
}

// Menu handles GET /v1/menu?category=&query=&limit=.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	limit, ok := api.QueryInt(r, "limit", catalog.DefaultMenuLimit)
	if !ok || limit < 0 {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("limit must be a non-negative integer", corrID, nil))
		return
	}

	q := r.URL.Query()
	items, err := h.catalog.Menu(r.Context(), catalog.MenuQuery{
		Category: q.Get("category"),
		Query:    q.Get("query"),
		Limit:    limit,
	})
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewCollection(items))
}

// Categories handles GET /v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewCollection(cats))
}

// Customizations handles GET /v1/menu/{menuId}/customizations.
func (h *Handler) Customizations(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Customizations(r.Context(), r.PathValue("menuId"))
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewCollection(items))
}
