package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "data/ticks" {
		t.Errorf("unexpected default data dir: %s", cfg.DataDir)
	}
	if cfg.PageSize != 64 {
		t.Errorf("unexpected default page size: %d", cfg.PageSize)
	}
	if cfg.Workers != 8 {
		t.Errorf("unexpected default workers: %d", cfg.Workers)
	}
	if cfg.PostgresDSN != "" {
		t.Errorf("postgres dsn should default empty, got %s", cfg.PostgresDSN)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PIPELINE_DATA_DIR", "/srv/ticks")
	t.Setenv("PIPELINE_PAGE_SIZE", "16")
	t.Setenv("PIPELINE_WORKERS", "2")
	t.Setenv("PIPELINE_POSTGRES_DSN", "postgres://localhost/checkpoints")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/srv/ticks" {
		t.Errorf("data dir not read from env: %s", cfg.DataDir)
	}
	if cfg.PageSize != 16 || cfg.Workers != 2 {
		t.Errorf("page size/workers not read from env: %d/%d", cfg.PageSize, cfg.Workers)
	}
	if cfg.PostgresDSN != "postgres://localhost/checkpoints" {
		t.Errorf("postgres dsn not read from env: %s", cfg.PostgresDSN)
	}
}

func TestLoad_RejectsNonPositiveSizes(t *testing.T) {
	t.Setenv("PIPELINE_PAGE_SIZE", "0")
	if _, err := Load(); err == nil {
		t.Error("expected an error for zero page size")
	}

	t.Setenv("PIPELINE_PAGE_SIZE", "64")
	t.Setenv("PIPELINE_WORKERS", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected an error for negative workers")
	}
}
