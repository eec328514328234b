// Package config loads the immutable pipeline configuration from the
// environment. Components receive the values they need at construction
// time; nothing reads the environment after startup.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the pipeline configuration. Prefix: PIPELINE_.
type Config struct {
	// DataDir holds combined per-date tick blobs (<product>/<date>.zst).
	DataDir string `envconfig:"DATA_DIR" default:"data/ticks"`

	// BlobDir holds temp and final accumulation blobs.
	BlobDir string `envconfig:"BLOB_DIR" default:"data/blobs"`

	// CacheDir holds the level-2 per-unit cache.
	CacheDir string `envconfig:"CACHE_DIR" default:"data/cache"`

	// PageSize is the number of work units dispatched per page.
	PageSize int `envconfig:"PAGE_SIZE" default:"64"`

	// Workers bounds pool concurrency for unit computation.
	Workers int `envconfig:"WORKERS" default:"8"`

	// DayCacheSize bounds the level-1 per-date blob cache.
	DayCacheSize int `envconfig:"DAY_CACHE_SIZE" default:"8"`

	// PostgresDSN, when set, selects the Postgres checkpoint store.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// ClickhouseDSN, when set, publishes finalized grids to ClickHouse.
	ClickhouseDSN string `envconfig:"CLICKHOUSE_DSN"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("pipeline", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("config: page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("config: workers must be positive, got %d", cfg.Workers)
	}
	return &cfg, nil
}
