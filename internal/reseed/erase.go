package reseed

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/store"
)

// TableEraser deletes every row of a table. It never stops on a failed
// delete.
type TableEraser struct {
	Rows        store.RowStore
	Concurrency int
	Logger      *slog.Logger
	Recorder    Recorder
}

// Erase lists the whole table and deletes each row concurrently.
func (e *TableEraser) Erase(ctx context.Context, table string) EraseResult {
	log := loggerOr(e.Logger)
	res := EraseResult{Target: table}

	rows, err := store.ListAll(ctx, e.Rows, table)
	if err != nil {
		res.ListErr = err
		log.Warn("error clearing table", "table", table, "error", err)
		return res
	}
	res.Listed = len(rows)

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	res.Deleted, res.Failures = deleteAll(ctx, ids, e.Concurrency, func(ctx context.Context, id string) error {
		return e.Rows.DeleteRow(ctx, table, id)
	}, OpDelete, table, recorderOr(e.Recorder))

	for _, f := range res.Failures {
		log.Warn("failed to delete row", "table", table, "id", f.ID, "error", f.Err)
	}
	log.Info("cleared table", "table", table, "rows", res.Deleted, "failed", len(res.Failures))
	return res
}

// BlobEraser deletes every file of a bucket. It never stops on a failed
// delete.
type BlobEraser struct {
	Blobs       blob.Store
	Concurrency int
	Logger      *slog.Logger
	Recorder    Recorder
}

// Erase lists the bucket and deletes each file concurrently.
func (e *BlobEraser) Erase(ctx context.Context, bucket string) EraseResult {
	log := loggerOr(e.Logger)
	res := EraseResult{Target: bucket}

	files, err := e.Blobs.ListFiles(ctx, bucket)
	if err != nil {
		res.ListErr = err
		log.Warn("error clearing storage", "bucket", bucket, "error", err)
		return res
	}
	res.Listed = len(files)

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	res.Deleted, res.Failures = deleteAll(ctx, ids, e.Concurrency, func(ctx context.Context, id string) error {
		return e.Blobs.DeleteFile(ctx, bucket, id)
	}, OpDeleteFile, bucket, recorderOr(e.Recorder))

	for _, f := range res.Failures {
		log.Warn("failed to delete file", "bucket", bucket, "id", f.ID, "error", f.Err)
	}
	log.Info("cleared storage", "bucket", bucket, "files", res.Deleted, "failed", len(res.Failures))
	return res
}

// deleteAll runs del for every id with at most limit in flight. Failures are
// collected, never propagated, so one failed delete does not cancel the rest.
func deleteAll(ctx context.Context, ids []string, limit int, del func(context.Context, string) error, op Op, target string, rec Recorder) (int, []RowResult) {
	var (
		mu       sync.Mutex
		deleted  int
		failures []RowResult
	)

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for _, id := range ids {
		g.Go(func() error {
			err := del(ctx, id)
			rec.ObserveRow(op, target, err == nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, RowResult{Op: op, Table: target, ID: id, Err: err})
				return nil
			}
			deleted++
			return nil
		})
	}
	_ = g.Wait()
	return deleted, failures
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func recorderOr(r Recorder) Recorder {
	if r == nil {
		return NopRecorder{}
	}
	return r
}
