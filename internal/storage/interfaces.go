package storage

import (
	"context"

	"tick-factor-pipeline/internal/domain"
)

// CheckpointStore persists per-unit completion records for a run.
// Append-only: a record, once written, is never updated or removed
// except by an explicit run reset.
type CheckpointStore interface {
	// RecordCompletion writes one completion record. Re-recording the
	// same (run, product, unit) is a no-op, so the completed set only
	// ever grows.
	RecordCompletion(ctx context.Context, rec *domain.CheckpointRecord) error

	// LastCompleted returns the maximum completed unit key for a run in
	// canonical unit order. Returns ErrNotFound when the run has no
	// checkpoints.
	LastCompleted(ctx context.Context, runID, product string) (domain.WorkUnitKey, error)

	// CompletedSet returns the canonical strings of all completed units.
	CompletedSet(ctx context.Context, runID, product string) (map[string]struct{}, error)

	// DeleteRun removes every checkpoint of a run. Only the explicit
	// reset path calls this.
	DeleteRun(ctx context.Context, runID, product string) error
}

// BlobStore persists accumulation buffers: one TempBlob per pending
// (run, product) and one FinalBlob per (product, factor set).
type BlobStore interface {
	// WriteTemp replaces the run's partial result blob.
	WriteTemp(ctx context.Context, runID, product string, rows []domain.FactorRow) error

	// ReadTemp loads the run's partial result blob. Returns ErrNotFound
	// when no temp blob exists.
	ReadTemp(ctx context.Context, runID, product string) ([]domain.FactorRow, error)

	// WriteFinal persists the completed result, replacing any prior
	// final blob for the same (product, factor set).
	WriteFinal(ctx context.Context, product, factorSet string, rows []domain.FactorRow) error

	// ReadFinal loads a completed result. Returns ErrNotFound when the
	// run never finalized.
	ReadFinal(ctx context.Context, product, factorSet string) ([]domain.FactorRow, error)

	// DeleteTemp discards the run's partial blob. Called only after
	// WriteFinal returned, so a crash mid-finalize still leaves a
	// resumable temp blob.
	DeleteTemp(ctx context.Context, runID, product string) error
}

// GridSink publishes finalized factor rows to an analytic store for
// downstream consumption. Optional; the pipeline completes without one.
type GridSink interface {
	PublishGrid(ctx context.Context, product, factorSet string, rows []domain.FactorRow) error
}
