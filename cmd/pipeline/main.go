// Package main runs one resumable factor computation run. Re-invoking
// with the same run id resumes from the last committed page.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tick-factor-pipeline/internal/cache"
	"tick-factor-pipeline/internal/calendar"
	"tick-factor-pipeline/internal/config"
	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/factor"
	"tick-factor-pipeline/internal/logging"
	"tick-factor-pipeline/internal/orchestrator"
	"tick-factor-pipeline/internal/source"
	"tick-factor-pipeline/internal/storage"
	"tick-factor-pipeline/internal/storage/clickhouse"
	"tick-factor-pipeline/internal/storage/fs"
	"tick-factor-pipeline/internal/storage/memory"
	"tick-factor-pipeline/internal/storage/postgres"
)

func main() {
	runID := flag.String("run-id", "", "Run identifier (required)")
	product := flag.String("product", "equity", "Product to compute")
	start := flag.String("start", "", "First trading date, YYYY-MM-DD (required)")
	end := flag.String("end", "", "Last trading date, YYYY-MM-DD (required)")
	instruments := flag.String("instruments", "", "Comma-separated instrument codes (required)")
	factors := flag.String("factors", "slot_return,vwap", "Comma-separated factor ids")
	factorSet := flag.String("factor-set", "default", "Factor set name for the final blob")
	flag.Parse()

	if *runID == "" || *start == "" || *end == "" || *instruments == "" {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn("received signal, cancelling run", zap.Stringer("signal", sig))
		cancel()
	}()

	cal := calendar.Default()
	if _, err := cal.Lookup(*product); err != nil {
		logger.Fatal("unknown product",
			zap.String("product", *product),
			zap.Strings("known", cal.Products()),
		)
	}

	units, err := buildUnits(*product, *start, *end, splitCSV(*instruments))
	if err != nil {
		logger.Fatal("build unit list", zap.Error(err))
	}

	orch, grids, cleanup, err := buildOrchestrator(ctx, cfg, cal, logger)
	if err != nil {
		logger.Fatal("build orchestrator", zap.Error(err))
	}
	defer cleanup()

	result, err := orch.Run(ctx, orchestrator.Request{
		RunID:     *runID,
		Product:   *product,
		FactorSet: *factorSet,
		FactorIDs: splitCSV(*factors),
		Units:     units,
	})
	if err != nil {
		logger.Fatal("run failed; re-invoke with the same run id to resume",
			zap.String("run_id", *runID), zap.Error(err))
	}

	logger.Info("run finished",
		zap.Int("pages", result.PagesDispatched),
		zap.Int("computed", result.UnitsComputed),
		zap.Int("missing", result.UnitsMissing),
		zap.Int("skipped", result.UnitsSkipped),
	)

	if grids != nil {
		n, err := grids.CountByProduct(ctx, *product, *factorSet)
		if err != nil {
			logger.Warn("count published grid rows", zap.Error(err))
		} else {
			logger.Info("grid published",
				zap.String("product", *product),
				zap.String("factor_set", *factorSet),
				zap.Uint64("rows", n),
			)
		}
	}
}

// buildOrchestrator wires stores from config: Postgres checkpoints and
// a ClickHouse sink when DSNs are set, in-memory checkpoints otherwise.
// The grid store is also returned for post-run checks; it is nil when
// no ClickHouse DSN is configured.
func buildOrchestrator(ctx context.Context, cfg *config.Config, cal *calendar.Calendar, logger *zap.Logger) (*orchestrator.Orchestrator, *clickhouse.GridStore, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var checkpoints storage.CheckpointStore
	if cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanups = append(cleanups, pool.Close)
		checkpoints = postgres.NewCheckpointStore(pool)
	} else {
		logger.Warn("no postgres dsn configured; checkpoints will not survive this process")
		checkpoints = memory.NewCheckpointStore()
	}

	var grids *clickhouse.GridStore
	var sink storage.GridSink
	if cfg.ClickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanups = append(cleanups, func() { conn.Close() })
		grids = clickhouse.NewGridStore(conn)
		sink = grids
	}

	blobs, err := fs.NewBlobStore(cfg.BlobDir)
	if err != nil {
		return nil, nil, cleanup, err
	}

	days, err := cache.NewDayCache(cfg.DayCacheSize)
	if err != nil {
		return nil, nil, cleanup, err
	}

	unitCache, err := cache.NewUnitCache(cfg.CacheDir)
	if err != nil {
		return nil, nil, cleanup, err
	}

	src := source.NewFileSource(cfg.DataDir, days)
	orch, err := orchestrator.New(orchestrator.Options{
		CheckpointStore: checkpoints,
		BlobStore:       blobs,
		GridSink:        sink,
		TickSource:      src,
		Registry:        factor.DefaultRegistry(unitCache, src),
		Calendar:        cal,
		PageSize:        cfg.PageSize,
		Workers:         cfg.Workers,
		Logger:          logger,
	})
	return orch, grids, cleanup, err
}

// buildUnits expands a date range (weekdays only) across instruments.
func buildUnits(product, start, end string, instruments []string) ([]domain.WorkUnitKey, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s before start date %s", end, start)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("no instruments given")
	}

	var units []domain.WorkUnitKey
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		date := d.Format("2006-01-02")
		for _, inst := range instruments {
			units = append(units, domain.WorkUnitKey{
				Date:       date,
				Product:    product,
				Instrument: inst,
			})
		}
	}
	return units, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
