package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/normalization"
	"tick-factor-pipeline/internal/storage"
)

// computeUnit runs one work unit end to end: fetch, normalize, apply
// factors. It is the callable submitted to the worker pool and returns
// a pure result; the orchestrator alone writes checkpoints and blobs.
func (o *Orchestrator) computeUnit(ctx context.Context, unit domain.WorkUnitKey, factorIDs []string) domain.UnitResult {
	ticks, err := o.source.Fetch(ctx, unit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Known-missing data: not fatal, the run continues.
			return domain.MissingResult(unit)
		}
		return domain.FatalResult(unit, fmt.Errorf("fetch %s: %w", unit, err))
	}

	sess, err := o.calendar.Lookup(unit.Product)
	if err != nil {
		return domain.FatalResult(unit, err)
	}

	grid, err := normalization.Normalize(unit, ticks, sess)
	if err != nil {
		return domain.FatalResult(unit, err)
	}
	if len(grid.Rows) == 0 {
		return domain.MissingResult(unit)
	}

	// Fresh factor instances per unit: no shared mutable state between
	// units beyond the level-2 cache files.
	factors, err := o.registry.Resolve(factorIDs)
	if err != nil {
		return domain.FatalResult(unit, err)
	}

	var rows []domain.FactorRow
	for _, f := range factors {
		out, err := f.Apply(ctx, grid)
		if err != nil {
			return domain.FatalResult(unit, fmt.Errorf("factor %s on %s: %w", f.ID(), unit, err))
		}
		rows = append(rows, out...)
	}
	return domain.OkResult(unit, rows)
}
