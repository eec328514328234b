// Package source provides raw tick sources: side-effect-free,
// idempotent readers of per-date tick data.
package source

import (
	"context"

	"tick-factor-pipeline/internal/domain"
)

// TickSource returns raw tick rows for one work unit. Implementations
// return storage.ErrNotFound when the unit has no data; the pipeline
// treats that as a known-missing unit, not a failure.
type TickSource interface {
	Fetch(ctx context.Context, unit domain.WorkUnitKey) ([]domain.RawTick, error)
}
