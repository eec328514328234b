// Package orchestrator composes the partitioner, worker pool, stores
// and caches into the resumable-compute protocol: pages of work units
// are dispatched, gathered, merged, checkpointed and flushed, so a
// killed run resumes at its last committed page without recomputation
// or duplication.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tick-factor-pipeline/internal/calendar"
	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/factor"
	"tick-factor-pipeline/internal/partition"
	"tick-factor-pipeline/internal/source"
	"tick-factor-pipeline/internal/storage"
	"tick-factor-pipeline/internal/workerpool"
)

// Orchestrator drives factor runs. It is the single writer to the
// checkpoint store and the blob store; workers only return values.
type Orchestrator struct {
	checkpoints storage.CheckpointStore
	blobs       storage.BlobStore
	sink        storage.GridSink
	source      source.TickSource
	registry    *factor.Registry
	calendar    *calendar.Calendar

	pageSize int
	workers  int
	logger   *zap.Logger
}

// Options for creating an Orchestrator.
type Options struct {
	CheckpointStore storage.CheckpointStore
	BlobStore       storage.BlobStore
	GridSink        storage.GridSink // optional
	TickSource      source.TickSource
	Registry        *factor.Registry
	Calendar        *calendar.Calendar

	PageSize int
	Workers  int
	Logger   *zap.Logger // optional
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.CheckpointStore == nil || opts.BlobStore == nil || opts.TickSource == nil {
		return nil, fmt.Errorf("orchestrator: checkpoint store, blob store and tick source are required")
	}
	if opts.Registry == nil || opts.Calendar == nil {
		return nil, fmt.Errorf("orchestrator: registry and calendar are required")
	}
	if opts.PageSize <= 0 || opts.Workers <= 0 {
		return nil, fmt.Errorf("orchestrator: page size and workers must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		checkpoints: opts.CheckpointStore,
		blobs:       opts.BlobStore,
		sink:        opts.GridSink,
		source:      opts.TickSource,
		registry:    opts.Registry,
		calendar:    opts.Calendar,
		pageSize:    opts.PageSize,
		workers:     opts.Workers,
		logger:      logger,
	}, nil
}

// Request describes one run.
type Request struct {
	RunID     string
	Product   string
	FactorSet string
	FactorIDs []string
	Units     []domain.WorkUnitKey // canonical order; sorted defensively
}

// Result summarizes a completed run.
type Result struct {
	PagesDispatched int
	UnitsComputed   int
	UnitsMissing    int
	UnitsSkipped    int // already checkpointed before this attempt
}

// Run executes one run to completion, resuming from the last committed
// page if checkpoints exist. A unit's hard failure aborts the run;
// everything committed before the failing page stays resumable.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.RunID == "" || req.Product == "" || req.FactorSet == "" {
		return nil, fmt.Errorf("orchestrator: run id, product and factor set are required")
	}
	if len(req.FactorIDs) == 0 {
		return nil, fmt.Errorf("orchestrator: at least one factor id is required")
	}

	units := make([]domain.WorkUnitKey, len(req.Units))
	copy(units, req.Units)
	domain.SortUnits(units)

	pager, err := partition.New(units, o.pageSize)
	if err != nil {
		return nil, err
	}

	buffer, resumePage, completed, complete, err := o.resume(ctx, req, pager, units)
	if err != nil {
		return nil, err
	}
	if complete {
		o.logger.Info("run already complete",
			zap.String("run_id", req.RunID),
			zap.String("product", req.Product),
			zap.Int("completed_units", len(completed)),
		)
		return &Result{UnitsSkipped: len(completed)}, nil
	}

	pool, err := workerpool.New[domain.UnitResult](o.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	result := &Result{UnitsSkipped: len(completed)}
	for pager.HasNext() {
		page := pager.Next()
		pageIdx := pager.Cursor()

		// Pages strictly before the resume point are fully committed:
		// skip without dispatching.
		if pageIdx < resumePage {
			continue
		}

		dispatch := page
		if pageIdx == resumePage && len(completed) > 0 {
			dispatch = filterCompleted(page, completed)
		}
		if len(dispatch) == 0 {
			continue
		}

		start := time.Now()
		buffer, err = o.runPage(ctx, req, pool, dispatch, buffer, result)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageIdx, err)
		}
		result.PagesDispatched++

		o.logger.Info("page committed",
			zap.String("run_id", req.RunID),
			zap.String("product", req.Product),
			zap.Int("page", pageIdx),
			zap.Int("max_page", pager.MaxPageIndex()),
			zap.Int("units", len(dispatch)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	if err := o.finalize(ctx, req, buffer); err != nil {
		return nil, err
	}

	o.logger.Info("run complete",
		zap.String("run_id", req.RunID),
		zap.String("product", req.Product),
		zap.Int("pages", result.PagesDispatched),
		zap.Int("computed", result.UnitsComputed),
		zap.Int("missing", result.UnitsMissing),
		zap.Int("skipped", result.UnitsSkipped),
	)
	return result, nil
}

// resume loads the checkpoint position and hydrates the accumulation
// buffer from the temp blob. A fresh run returns an empty buffer and
// resume page 0; a run that already finalized returns complete=true.
func (o *Orchestrator) resume(ctx context.Context, req Request, pager *partition.Pager, units []domain.WorkUnitKey) ([]domain.FactorRow, int, map[string]struct{}, bool, error) {
	last, err := o.checkpoints.LastCompleted(ctx, req.RunID, req.Product)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, nil, false, nil
		}
		return nil, 0, nil, false, fmt.Errorf("query resume position: %w", err)
	}

	resumePage := pager.PageOf(last)
	if resumePage == 0 {
		return nil, 0, nil, false, fmt.Errorf("%w: last completed unit %s is not in the work list", ErrInconsistentResume, last)
	}

	completed, err := o.checkpoints.CompletedSet(ctx, req.RunID, req.Product)
	if err != nil {
		return nil, 0, nil, false, fmt.Errorf("load completed set: %w", err)
	}

	buffer, err := o.blobs.ReadTemp(ctx, req.RunID, req.Product)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Finalize deletes the temp blob only after the final blob
			// is written, so a checkpoint set covering every unit plus
			// a readable final blob means this run already finished.
			if allCompleted(units, completed) {
				if _, ferr := o.blobs.ReadFinal(ctx, req.Product, req.FactorSet); ferr == nil {
					return nil, 0, completed, true, nil
				}
			}
			return nil, 0, nil, false, fmt.Errorf("%w: %d units checkpointed but no temp blob exists", ErrInconsistentResume, len(completed))
		}
		return nil, 0, nil, false, fmt.Errorf("read temp blob: %w", err)
	}

	// The temp blob is flushed before checkpoints are committed, so a
	// crash between the two leaves rows for units the checkpoint set
	// does not cover. Those units will be recomputed; drop their rows
	// so the merge cannot duplicate them.
	reconciled := buffer[:0:0]
	dropped := 0
	for _, row := range buffer {
		key := domain.WorkUnitKey{Date: row.Date, Product: row.Product, Instrument: row.Instrument}
		if _, ok := completed[key.String()]; ok {
			reconciled = append(reconciled, row)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		o.logger.Warn("dropped uncheckpointed rows from temp blob",
			zap.String("run_id", req.RunID),
			zap.Int("rows", dropped),
		)
	}

	o.logger.Info("resuming run",
		zap.String("run_id", req.RunID),
		zap.String("product", req.Product),
		zap.String("last_completed", last.String()),
		zap.Int("resume_page", resumePage),
		zap.Int("completed_units", len(completed)),
	)
	return reconciled, resumePage, completed, false, nil
}

// runPage dispatches one page, gathers results in unit-key order,
// merges them, flushes the temp blob and commits checkpoints.
func (o *Orchestrator) runPage(ctx context.Context, req Request, pool *workerpool.Pool[domain.UnitResult], page []domain.WorkUnitKey, buffer []domain.FactorRow, result *Result) ([]domain.FactorRow, error) {
	for _, unit := range page {
		pool.Execute(func() (domain.UnitResult, error) {
			return o.computeUnit(ctx, unit, req.FactorIDs), nil
		})
	}

	// Page-level barrier: handles come back in submission (unit-key)
	// order, so the merge is deterministic regardless of which worker
	// finishes first.
	var gathered []domain.UnitResult
	for _, h := range pool.Results() {
		res, err := h.Get()
		if err != nil {
			return nil, fmt.Errorf("worker: %w", err)
		}
		if res.Outcome == domain.UnitFatal {
			return nil, res.Err
		}
		gathered = append(gathered, res)
	}

	for _, res := range gathered {
		if res.Outcome == domain.UnitOK {
			buffer = append(buffer, res.Rows...)
			result.UnitsComputed++
		} else {
			result.UnitsMissing++
			o.logger.Warn("unit has no source data",
				zap.String("run_id", req.RunID),
				zap.String("unit", res.Unit.String()),
			)
		}
	}

	// Flush before checkpointing: a checkpoint must never claim a unit
	// the temp blob does not carry.
	if err := o.blobs.WriteTemp(ctx, req.RunID, req.Product, buffer); err != nil {
		return nil, fmt.Errorf("flush temp blob: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, res := range gathered {
		status := domain.StatusDone
		if res.Outcome == domain.UnitMissing {
			status = domain.StatusMissing
		}
		rec := &domain.CheckpointRecord{
			RunID:       req.RunID,
			Product:     req.Product,
			Unit:        res.Unit,
			Status:      status,
			CompletedAt: now,
		}
		if err := o.checkpoints.RecordCompletion(ctx, rec); err != nil {
			return nil, fmt.Errorf("record checkpoint %s: %w", res.Unit, err)
		}
	}
	return buffer, nil
}

// finalize persists the final blob, publishes it to the sink if one is
// configured, and only then discards the temp blob. A crash anywhere in
// here leaves a resumable temp blob plus checkpoints.
func (o *Orchestrator) finalize(ctx context.Context, req Request, buffer []domain.FactorRow) error {
	// Canonical row order: the final blob's bytes depend only on the
	// computed values, not on the factor order of the request.
	domain.SortFactorRows(buffer)
	if err := o.blobs.WriteFinal(ctx, req.Product, req.FactorSet, buffer); err != nil {
		return fmt.Errorf("write final blob: %w", err)
	}
	if o.sink != nil {
		if err := o.sink.PublishGrid(ctx, req.Product, req.FactorSet, buffer); err != nil {
			return fmt.Errorf("publish grid: %w", err)
		}
	}
	if err := o.blobs.DeleteTemp(ctx, req.RunID, req.Product); err != nil {
		return fmt.Errorf("delete temp blob: %w", err)
	}
	return nil
}

func allCompleted(units []domain.WorkUnitKey, completed map[string]struct{}) bool {
	for _, u := range units {
		if _, ok := completed[u.String()]; !ok {
			return false
		}
	}
	return true
}

func filterCompleted(page []domain.WorkUnitKey, completed map[string]struct{}) []domain.WorkUnitKey {
	out := make([]domain.WorkUnitKey, 0, len(page))
	for _, u := range page {
		if _, ok := completed[u.String()]; !ok {
			out = append(out, u)
		}
	}
	return out
}
