// Package main resets one run: deletes its checkpoint rows and its
// temp blob. This is the only way out of an inconsistent-resume error,
// and it is deliberately a separate, explicit command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tick-factor-pipeline/internal/config"
	"tick-factor-pipeline/internal/logging"
	"tick-factor-pipeline/internal/storage/fs"
	"tick-factor-pipeline/internal/storage/postgres"
)

func main() {
	runID := flag.String("run-id", "", "Run identifier (required)")
	product := flag.String("product", "equity", "Product of the run")
	flag.Parse()

	if *runID == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	blobs, err := fs.NewBlobStore(cfg.BlobDir)
	if err != nil {
		logger.Fatal("open blob store", zap.Error(err))
	}
	if err := blobs.DeleteTemp(ctx, *runID, *product); err != nil {
		logger.Fatal("delete temp blob", zap.Error(err))
	}

	if cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()

		store := postgres.NewCheckpointStore(pool)
		if err := store.DeleteRun(ctx, *runID, *product); err != nil {
			logger.Fatal("delete checkpoints", zap.Error(err))
		}
	}

	logger.Info("run reset",
		zap.String("run_id", *runID),
		zap.String("product", *product),
	)
}
