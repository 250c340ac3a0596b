package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/domain"
)

// fileErrors maps 4xx responses from the files API onto blob errors.
func fileErrors(status int, apiErr *api.Error) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", apiErr.Message, blob.ErrInvalidName)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", apiErr.Message, blob.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", apiErr.Message, blob.ErrExists)
	}
	return nil
}

// ListFiles returns every file in the bucket.
func (c *Client) ListFiles(ctx context.Context, bucket string) ([]domain.File, error) {
	var out api.CollectionResponse[domain.File]
	op := "list files " + bucket
	if err := c.do(ctx, op, http.MethodGet, c.endpoint(nil, "v1", "buckets", bucket, "files"), http.NoBody, "", &out, fileErrors); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// DeleteFile removes a file.
func (c *Client) DeleteFile(ctx context.Context, bucket, id string) error {
	op := fmt.Sprintf("delete file %s/%s", bucket, id)
	return c.do(ctx, op, http.MethodDelete, c.endpoint(nil, "v1", "buckets", bucket, "files", id), http.NoBody, "", nil, fileErrors)
}

// UploadFile streams r to the server as a multipart upload.
func (c *Client) UploadFile(ctx context.Context, bucket, id, name string, r io.Reader, contentType string) (domain.File, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUpload(mw, id, name, r, contentType))
	}()

	var f domain.File
	op := "upload file " + bucket
	err := c.do(ctx, op, http.MethodPost, c.endpoint(nil, "v1", "buckets", bucket, "files"), pr, mw.FormDataContentType(), &f, fileErrors)
	// Unblock the writer if the request ended before consuming the body.
	_ = pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return domain.File{}, err
	}
	return f, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUpload(mw *multipart.Writer, id, name string, r io.Reader, contentType string) error {
	if id != "" {
		if err := mw.WriteField("fileId", id); err != nil {
			return err
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}
