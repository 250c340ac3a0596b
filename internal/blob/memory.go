package blob

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/johnwards/menuseed/internal/domain"
)

type memFile struct {
	file domain.File
	data []byte
}

// Memory is a Store backed by process memory. Intended for tests.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memFile
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string]memFile)}
}

// ListFiles returns every file in the bucket ordered by id.
func (m *Memory) ListFiles(ctx context.Context, bucket string) ([]domain.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := m.buckets[bucket]
	out := make([]domain.File, 0, len(files))
	for _, id := range slices.Sorted(maps.Keys(files)) {
		out = append(out, files[id].file)
	}
	return out, nil
}

// DeleteFile removes a file.
func (m *Memory) DeleteFile(ctx context.Context, bucket, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buckets[bucket][id]; !ok {
		return fmt.Errorf("%s/%s: %w", bucket, id, ErrNotFound)
	}
	delete(m.buckets[bucket], id)
	return nil
}

// UploadFile stores a new file; it fails if the id is taken.
func (m *Memory) UploadFile(ctx context.Context, bucket, id, name string, r io.Reader, contentType string) (domain.File, error) {
	if err := checkName("bucket", bucket); err != nil {
		return domain.File{}, err
	}
	id, err := resolveID(id)
	if err != nil {
		return domain.File{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.File{}, fmt.Errorf("read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.File{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buckets[bucket][id]; ok {
		return domain.File{}, fmt.Errorf("%s/%s: %w", bucket, id, ErrExists)
	}
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string]memFile)
	}
	f := domain.File{
		ID:          id,
		Bucket:      bucket,
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	m.buckets[bucket][id] = memFile{file: f, data: data}
	return f, nil
}
