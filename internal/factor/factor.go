// Package factor defines the opaque per-unit computations the pipeline
// drives: functions from a normalized grid to derived columns, found
// through an explicit registry.
package factor

import (
	"context"

	"tick-factor-pipeline/internal/domain"
)

// Factor derives one column family from a normalized grid. Apply must
// be pure with respect to shared pipeline state: it may read and write
// the level-2 unit cache, nothing else.
type Factor interface {
	// ID returns the stable identifier the factor is registered under.
	ID() string

	// Apply computes one row per grid slot. A nil row slice with nil
	// error is valid for an empty grid.
	Apply(ctx context.Context, grid *domain.NormalizedGrid) ([]domain.FactorRow, error)
}

// Factory builds a factor instance. Factories run at startup when the
// registry is populated; they must not do I/O.
type Factory func() Factor

// rowsFor maps one value per grid slot into factor rows.
func rowsFor(grid *domain.NormalizedGrid, id string, values []float64) []domain.FactorRow {
	rows := make([]domain.FactorRow, 0, len(values))
	for i, v := range values {
		rows = append(rows, domain.FactorRow{
			Date:       grid.Unit.Date,
			Product:    grid.Unit.Product,
			Instrument: grid.Unit.Instrument,
			Seconds:    grid.Rows[i].Seconds,
			Factor:     id,
			Value:      v,
		})
	}
	return rows
}
