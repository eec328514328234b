package clickhouse

import (
	"context"
	"fmt"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// GridStore implements storage.GridSink on ClickHouse. The factor_grid
// table is a ReplacingMergeTree keyed by (product, factor_set, date,
// instrument, factor, seconds), so re-publishing a finished run
// converges instead of duplicating.
type GridStore struct {
	conn *Conn
}

// NewGridStore creates a new GridStore.
func NewGridStore(conn *Conn) *GridStore {
	return &GridStore{conn: conn}
}

var _ storage.GridSink = (*GridStore)(nil)

// PublishGrid batch-inserts finalized factor rows.
func (s *GridStore) PublishGrid(ctx context.Context, product, factorSet string, rows []domain.FactorRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO factor_grid (
			product, factor_set, trade_date, instrument, seconds, factor, value
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i := range rows {
		r := &rows[i]
		err = batch.Append(
			product, factorSet, r.Date, r.Instrument,
			uint32(r.Seconds), r.Factor, r.Value,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// CountByProduct returns the number of published rows for a product and
// factor set. Used by operational checks after finalize.
func (s *GridStore) CountByProduct(ctx context.Context, product, factorSet string) (uint64, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT count() FROM factor_grid
		WHERE product = ? AND factor_set = ?
	`, product, factorSet)

	var n uint64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count by product: %w", err)
	}
	return n, nil
}
