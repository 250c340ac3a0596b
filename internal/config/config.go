package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/johnwards/menuseed/internal/domain"
)

// Row store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverRemote   = "remote"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr      string // MENUSEED_ADDR, default ":8080"
	DBDriver  string // MENUSEED_DB_DRIVER, default "sqlite"
	DBDSN     string // MENUSEED_DB_DSN, default "menuseed.db"
	RemoteURL string // MENUSEED_REMOTE_URL, required for the remote driver
	AuthToken string // MENUSEED_AUTH_TOKEN, optional

	CORSOrigins []string // MENUSEED_CORS_ORIGINS, comma-separated, empty allows any

	BlobDriver      string // MENUSEED_BLOB_DRIVER, default "fs"
	BlobFSRoot      string // MENUSEED_BLOB_FS_ROOT, default "blobdata"
	BlobS3Region    string // MENUSEED_BLOB_S3_REGION
	BlobS3Endpoint  string // MENUSEED_BLOB_S3_ENDPOINT
	BlobS3PathStyle bool   // MENUSEED_BLOB_S3_PATH_STYLE
	Bucket          string // MENUSEED_BUCKET, default "menu-images"
	ClearBucket     bool   // MENUSEED_CLEAR_BUCKET

	Dataset     string // MENUSEED_DATASET, empty means the embedded dataset
	Concurrency int    // MENUSEED_CONCURRENCY, default 8

	LogLevel  string // MENUSEED_LOG_LEVEL, default "info"
	LogFormat string // MENUSEED_LOG_FORMAT, default "text"

	Tables domain.Tables // MENUSEED_TABLE_*
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:      envOr("MENUSEED_ADDR", ":8080"),
		DBDriver:  envOr("MENUSEED_DB_DRIVER", DriverSQLite),
		DBDSN:     envOr("MENUSEED_DB_DSN", "menuseed.db"),
		RemoteURL: os.Getenv("MENUSEED_REMOTE_URL"),
		AuthToken: os.Getenv("MENUSEED_AUTH_TOKEN"),

		CORSOrigins: envList("MENUSEED_CORS_ORIGINS"),

		BlobDriver:      envOr("MENUSEED_BLOB_DRIVER", "fs"),
		BlobFSRoot:      envOr("MENUSEED_BLOB_FS_ROOT", "blobdata"),
		BlobS3Region:    os.Getenv("MENUSEED_BLOB_S3_REGION"),
		BlobS3Endpoint:  os.Getenv("MENUSEED_BLOB_S3_ENDPOINT"),
		BlobS3PathStyle: envBool("MENUSEED_BLOB_S3_PATH_STYLE"),
		Bucket:          envOr("MENUSEED_BUCKET", "menu-images"),
		ClearBucket:     envBool("MENUSEED_CLEAR_BUCKET"),

		Dataset:     os.Getenv("MENUSEED_DATASET"),
		Concurrency: envInt("MENUSEED_CONCURRENCY", 8),

		LogLevel:  envOr("MENUSEED_LOG_LEVEL", "info"),
		LogFormat: envOr("MENUSEED_LOG_FORMAT", "text"),

		Tables: domain.Tables{
			Categories:         envOr("MENUSEED_TABLE_CATEGORIES", "categories"),
			Customizations:     envOr("MENUSEED_TABLE_CUSTOMIZATIONS", "customizations"),
			Menu:               envOr("MENUSEED_TABLE_MENU", "menu"),
			MenuCustomizations: envOr("MENUSEED_TABLE_MENU_CUSTOMIZATIONS", "menu_customizations"),
		},
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	case DriverRemote:
		if c.RemoteURL == "" {
			errs = append(errs, errors.New("MENUSEED_REMOTE_URL is required for the remote driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MENUSEED_DB_DRIVER %q", c.DBDriver))
	}
	switch c.BlobDriver {
	case "fs", "s3", "memory":
	case DriverRemote:
		if c.RemoteURL == "" {
			errs = append(errs, errors.New("MENUSEED_REMOTE_URL is required for the remote blob driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MENUSEED_BLOB_DRIVER %q", c.BlobDriver))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown MENUSEED_LOG_LEVEL %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown MENUSEED_LOG_FORMAT %q", c.LogFormat))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("MENUSEED_CONCURRENCY must be positive, got %d", c.Concurrency))
	}
	if c.Bucket == "" {
		errs = append(errs, errors.New("MENUSEED_BUCKET must not be empty"))
	}
	t := c.Tables
	if t.Categories == "" || t.Customizations == "" || t.Menu == "" || t.MenuCustomizations == "" {
		errs = append(errs, errors.New("table ids must not be empty"))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// envInt returns fallback when the variable is unset. Unparsable values
// become 0 so Validate reports them.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
