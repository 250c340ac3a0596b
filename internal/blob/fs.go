package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/johnwards/menuseed/internal/domain"
)

const metaSuffix = ".meta"

// Filesystem is a Store rooted at a local directory. Each bucket is a
// subdirectory; every file has a JSON sidecar holding its name and type.
type Filesystem struct {
	root string
}

type metaFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	CreatedAt   string `json:"created_at"`
}

// NewFilesystem returns a store rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./blobdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) paths(bucket, id string) (dataPath, metaPath string, err error) {
	if err := checkName("bucket", bucket); err != nil {
		return "", "", err
	}
	if err := checkName("file id", id); err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, bucket, id)
	return dataPath, dataPath + metaSuffix, nil
}

// ListFiles returns every file in the bucket ordered by id. A missing bucket
// directory is an empty bucket.
func (s *Filesystem) ListFiles(ctx context.Context, bucket string) ([]domain.File, error) {
	if err := checkName("bucket", bucket); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, bucket))
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", bucket, err)
	}

	files := make([]domain.File, 0, len(entries)/2)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaSuffix) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), metaSuffix)
		mf, err := readMeta(filepath.Join(s.root, bucket, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, mf.file(bucket, id))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

// DeleteFile removes a file and its sidecar.
func (s *Filesystem) DeleteFile(_ context.Context, bucket, id string) error {
	dataPath, metaPath, err := s.paths(bucket, id)
	if err != nil {
		return err
	}
	if err := os.Remove(dataPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", bucket, id, ErrNotFound)
		}
		return fmt.Errorf("delete %s/%s: %w", bucket, id, err)
	}
	_ = os.Remove(metaPath)
	return nil
}

// UploadFile streams r into a new file; it fails if the id is taken.
func (s *Filesystem) UploadFile(_ context.Context, bucket, id, name string, r io.Reader, contentType string) (domain.File, error) {
	id, err := resolveID(id)
	if err != nil {
		return domain.File{}, err
	}
	dataPath, metaPath, err := s.paths(bucket, id)
	if err != nil {
		return domain.File{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return domain.File{}, fmt.Errorf("%s/%s: %w", bucket, id, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return domain.File{}, fmt.Errorf("create bucket dir: %w", err)
	}

	// Stream to a temp file, then rename into place.
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return domain.File{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return domain.File{}, fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.File{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return domain.File{}, fmt.Errorf("move upload into place: %w", err)
	}

	mf := metaFile{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(mf)
	if err != nil {
		return domain.File{}, fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		return domain.File{}, fmt.Errorf("write metadata: %w", err)
	}
	return mf.file(bucket, id), nil
}

func readMeta(path string) (metaFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return metaFile{}, fmt.Errorf("read metadata: %w", err)
	}
	var mf metaFile
	if err := json.Unmarshal(b, &mf); err != nil {
		return metaFile{}, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	return mf, nil
}

func (mf metaFile) file(bucket, id string) domain.File {
	return domain.File{
		ID:          id,
		Bucket:      bucket,
		Name:        mf.Name,
		Size:        mf.Size,
		ContentType: mf.ContentType,
		CreatedAt:   mf.CreatedAt,
	}
}
