package files_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/files"
	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/domain"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	files.RegisterRoutes(mux, blob.NewMemory())

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv
}

func upload(t *testing.T, srv *httptest.Server, bucket, fileID, name, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileID != "" {
		if err := mw.WriteField("fileId", fileID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	resp, err := http.Post(srv.URL+"/v1/buckets/"+bucket+"/files", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func listFiles(t *testing.T, srv *httptest.Server, bucket string) api.CollectionResponse[domain.File] {
	t.Helper()
	resp, err := http.Get(srv.URL + "/v1/buckets/" + bucket + "/files")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	var out api.CollectionResponse[domain.File]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestUploadListDelete(t *testing.T) {
	srv := setupServer(t)

	resp := upload(t, srv, "menu-images", "burger", "burger.png", "png-bytes")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var f domain.File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.ID != "burger" || f.Name != "burger.png" || f.Size != int64(len("png-bytes")) {
		t.Errorf("unexpected file: %+v", f)
	}

	generated := upload(t, srv, "menu-images", "", "pizza.png", "x")
	if generated.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for generated id, got %d", generated.StatusCode)
	}

	if got := listFiles(t, srv, "menu-images"); got.Total != 2 {
		t.Fatalf("total = %d, want 2", got.Total)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/buckets/menu-images/files/burger", http.NoBody)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.StatusCode)
	}
	if got := listFiles(t, srv, "menu-images"); got.Total != 1 {
		t.Errorf("total after delete = %d, want 1", got.Total)
	}
}

func TestUploadErrors(t *testing.T) {
	srv := setupServer(t)
	upload(t, srv, "menu-images", "burger", "burger.png", "x")

	if resp := upload(t, srv, "menu-images", "burger", "burger.png", "x"); resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate id: expected 409, got %d", resp.StatusCode)
	}
	if resp := upload(t, srv, "menu-images", "..", "x.png", "x"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid id: expected 400, got %d", resp.StatusCode)
	}

	resp, err := http.Post(srv.URL+"/v1/buckets/menu-images/files", "application/json", bytes.NewBufferString(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-multipart: expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteMissingFile(t *testing.T) {
	srv := setupServer(t)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/buckets/menu-images/files/nope", http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListEmptyBucket(t *testing.T) {
	srv := setupServer(t)
	got := listFiles(t, srv, "menu-images")
	if got.Results == nil || got.Total != 0 {
		t.Errorf("expected empty non-nil results, got %+v", got)
	}
}
