package menu

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/catalog"
)

// RegisterRoutes adds the menu and category endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, c *catalog.Catalog) {
	h := &Handler{catalog: c}

	mux.HandleFunc("GET /v1/menu", h.Menu)
	mux.HandleFunc("GET /v1/menu/{menuId}/customizations", h.Customizations)
	mux.HandleFunc("GET /v1/categories", h.Categories)
}
