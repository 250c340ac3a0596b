package files

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/blob"
)

// RegisterRoutes adds the bucket file endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s blob.Store) {
	h := &Handler{blobs: s}

	mux.HandleFunc("GET /v1/buckets/{bucket}/files", h.List)
	mux.HandleFunc("POST /v1/buckets/{bucket}/files", h.Upload)
	mux.HandleFunc("DELETE /v1/buckets/{bucket}/files/{fileId}", h.Delete)
}
