// Package blob stores uploaded files in named buckets. Drivers: local
// filesystem, S3-compatible object storage and process memory.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/google/uuid"

	"github.com/johnwards/menuseed/internal/domain"
)

// Store is a bucketed file store.
type Store interface {
	ListFiles(ctx context.Context, bucket string) ([]domain.File, error)
	DeleteFile(ctx context.Context, bucket, id string) error
	UploadFile(ctx context.Context, bucket, id, name string, r io.Reader, contentType string) (domain.File, error)
}

// Driver names accepted by Open.
const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
	DriverMemory     = "memory"
)

var (
	// ErrNotFound is returned when a file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrExists is returned when uploading over an existing file id.
	ErrExists = errors.New("file already exists")
	// ErrInvalidName is returned for bucket names and file ids outside the
	// allowed character set.
	ErrInvalidName = errors.New("invalid name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,62}$`)

// checkName rejects bucket names and file ids that could escape their
// directory or object prefix.
func checkName(kind, s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, s)
	}
	return nil
}

// resolveID generates a file id for "" and "unique()".
func resolveID(id string) (string, error) {
	if id == "" || id == domain.UniqueID {
		return uuid.NewString(), nil
	}
	if err := checkName("file id", id); err != nil {
		return "", err
	}
	return id, nil
}
