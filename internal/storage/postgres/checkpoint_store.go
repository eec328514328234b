package postgres

import (
	"context"
	"fmt"
	"time"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// CheckpointStore is a PostgreSQL implementation of
// storage.CheckpointStore backed by the factor_checkpoints table.
// Inserts use ON CONFLICT DO NOTHING: the completed set only grows.
type CheckpointStore struct {
	pool *Pool
}

// NewCheckpointStore creates a new PostgreSQL checkpoint store.
func NewCheckpointStore(pool *Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// RecordCompletion writes one completion record; idempotent per unit.
func (s *CheckpointStore) RecordCompletion(ctx context.Context, rec *domain.CheckpointRecord) error {
	if rec == nil || rec.RunID == "" || rec.Product == "" {
		return storage.ErrInvalidInput
	}

	completedAt := rec.CompletedAt
	if completedAt == 0 {
		completedAt = time.Now().UnixMilli()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO factor_checkpoints (run_id, product, trade_date, instrument, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, product, trade_date, instrument) DO NOTHING
	`, rec.RunID, rec.Product, rec.Unit.Date, rec.Unit.Instrument, string(rec.Status), completedAt)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// LastCompleted returns the maximum completed unit in canonical
// (date, product, instrument) order. Product is fixed per run, so the
// query orders by date then instrument.
func (s *CheckpointStore) LastCompleted(ctx context.Context, runID, product string) (domain.WorkUnitKey, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT trade_date, instrument
		FROM factor_checkpoints
		WHERE run_id = $1 AND product = $2
		ORDER BY trade_date DESC, instrument DESC
		LIMIT 1
	`, runID, product)

	unit := domain.WorkUnitKey{Product: product}
	if err := row.Scan(&unit.Date, &unit.Instrument); err != nil {
		if isNotFoundError(err) {
			return domain.WorkUnitKey{}, storage.ErrNotFound
		}
		return domain.WorkUnitKey{}, fmt.Errorf("last completed: %w", err)
	}
	return unit, nil
}

// CompletedSet returns canonical strings of all completed units.
func (s *CheckpointStore) CompletedSet(ctx context.Context, runID, product string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT trade_date, instrument
		FROM factor_checkpoints
		WHERE run_id = $1 AND product = $2
	`, runID, product)
	if err != nil {
		return nil, fmt.Errorf("completed set: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		unit := domain.WorkUnitKey{Product: product}
		if err := rows.Scan(&unit.Date, &unit.Instrument); err != nil {
			return nil, fmt.Errorf("completed set scan: %w", err)
		}
		out[unit.String()] = struct{}{}
	}
	return out, rows.Err()
}

// DeleteRun removes every checkpoint of a run.
func (s *CheckpointStore) DeleteRun(ctx context.Context, runID, product string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM factor_checkpoints
		WHERE run_id = $1 AND product = $2
	`, runID, product)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
