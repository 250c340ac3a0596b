package files

import (
	"errors"
	"net/http"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/blob"
)

// maxUploadBytes caps a single multipart upload.
const maxUploadBytes = 32 << 20

// Handler serves bucket files.
type Handler struct {
	blobs blob.Store
}

// List handles GET /v1/buckets/{bucket}/files.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.blobs.ListFiles(r.Context(), r.PathValue("bucket"))
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewCollection(files))
}

// Upload handles POST /v1/buckets/{bucket}/files. The body is multipart with
// a "file" part and an optional "fileId" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			api.WriteError(w, http.StatusRequestEntityTooLarge, api.NewValidationError("upload too large", corrID, nil))
			return
		}
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("expected multipart form", corrID, nil))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	part, header, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.NewValidationError("file is required", corrID, []api.ErrorDetail{
			{Message: "missing multipart part", Code: api.CodeRequired, In: "file"},
		}))
		return
	}
	defer func() { _ = part.Close() }()

	contentType := header.Header.Get("Content-Type")
	f, err := h.blobs.UploadFile(r.Context(), r.PathValue("bucket"), r.FormValue("fileId"), header.Filename, part, contentType)
	if err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, f)
}

// Delete handles DELETE /v1/buckets/{bucket}/files/{fileId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.blobs.DeleteFile(r.Context(), r.PathValue("bucket"), r.PathValue("fileId")); err != nil {
		api.WriteStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
