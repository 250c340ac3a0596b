// Package app builds the stores, dataset and orchestrator described by a
// config.Config. The CLI commands share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/client"
	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/dataset"
	"github.com/johnwards/menuseed/internal/reseed"
	"github.com/johnwards/menuseed/internal/seed"
	"github.com/johnwards/menuseed/internal/store"
)

// Stores holds the opened row and blob stores.
type Stores struct {
	Rows  store.RowStore
	Blobs blob.Store
	// DB is set for the sqlite and postgres drivers.
	DB *database.DB
}

// Close releases the database connection, if any.
func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Open validates cfg and opens its stores. SQL databases are migrated and
// have their table definitions installed.
func Open(ctx context.Context, cfg config.Config) (*Stores, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		st     = &Stores{}
		remote *client.Client
		err    error
	)
	if cfg.DBDriver == config.DriverRemote || cfg.BlobDriver == config.DriverRemote {
		remote, err = client.New(cfg.RemoteURL, client.WithToken(cfg.AuthToken))
		if err != nil {
			return nil, err
		}
	}

	switch cfg.DBDriver {
	case config.DriverMemory:
		st.Rows = store.NewMemoryRowStore(seed.MenuTables(cfg.Tables)...)
	case config.DriverRemote:
		st.Rows = remote
	default:
		db, err := OpenDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		st.DB = db
		st.Rows = store.NewSQLRowStore(db)
	}

	if cfg.BlobDriver == config.DriverRemote {
		st.Blobs = remote
	} else {
		st.Blobs, err = blob.Open(ctx, blob.Config{
			Driver: cfg.BlobDriver,
			FSRoot: cfg.BlobFSRoot,
			S3: blob.S3Config{
				Region:    cfg.BlobS3Region,
				Endpoint:  cfg.BlobS3Endpoint,
				PathStyle: cfg.BlobS3PathStyle,
			},
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open blob store: %w", err), st.Close())
		}
	}
	return st, nil
}

// OpenDatabase opens the configured SQL database, runs migrations and
// installs the menu table definitions.
func OpenDatabase(ctx context.Context, cfg config.Config) (*database.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := seed.Seed(ctx, db, cfg.Tables); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed data: %w", err)
	}
	return db, nil
}

// LoadDataset returns the configured dataset file, or the embedded default.
func LoadDataset(cfg config.Config) (*dataset.Dataset, error) {
	if cfg.Dataset == "" {
		return dataset.Default()
	}
	return dataset.Load(cfg.Dataset)
}

// NewOrchestrator wires a reseed run over st. The bucket is only cleared
// when cfg.ClearBucket is set.
func NewOrchestrator(cfg config.Config, st *Stores, ds *dataset.Dataset, logger *slog.Logger, rec reseed.Recorder) *reseed.Orchestrator {
	opts := reseed.Options{
		Tables:      cfg.Tables,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		Recorder:    rec,
	}
	if cfg.ClearBucket {
		opts.Blobs = st.Blobs
		opts.Bucket = cfg.Bucket
	}
	return reseed.New(st.Rows, ds, opts)
}
