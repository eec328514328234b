// Package memory provides in-memory storage backends, used by tests
// and single-shot local runs.
package memory

import (
	"context"
	"sync"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// CheckpointStore is an in-memory implementation of
// storage.CheckpointStore.
type CheckpointStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.CheckpointRecord // runKey -> unit string -> record
}

// NewCheckpointStore creates an empty in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{data: make(map[string]map[string]*domain.CheckpointRecord)}
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)

func runKey(runID, product string) string {
	return runID + "|" + product
}

// RecordCompletion writes one completion record; idempotent per unit.
func (s *CheckpointStore) RecordCompletion(_ context.Context, rec *domain.CheckpointRecord) error {
	if rec == nil || rec.RunID == "" || rec.Product == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rk := runKey(rec.RunID, rec.Product)
	units, ok := s.data[rk]
	if !ok {
		units = make(map[string]*domain.CheckpointRecord)
		s.data[rk] = units
	}

	uk := rec.Unit.String()
	if _, exists := units[uk]; exists {
		return nil
	}
	recCopy := *rec
	units[uk] = &recCopy
	return nil
}

// LastCompleted returns the maximum completed unit in canonical order.
func (s *CheckpointStore) LastCompleted(_ context.Context, runID, product string) (domain.WorkUnitKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	units, ok := s.data[runKey(runID, product)]
	if !ok || len(units) == 0 {
		return domain.WorkUnitKey{}, storage.ErrNotFound
	}

	var max domain.WorkUnitKey
	first := true
	for _, rec := range units {
		if first || domain.CompareUnits(rec.Unit, max) > 0 {
			max = rec.Unit
			first = false
		}
	}
	return max, nil
}

// CompletedSet returns canonical strings of all completed units.
func (s *CheckpointStore) CompletedSet(_ context.Context, runID, product string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{})
	for uk := range s.data[runKey(runID, product)] {
		out[uk] = struct{}{}
	}
	return out, nil
}

// DeleteRun removes every checkpoint of a run.
func (s *CheckpointStore) DeleteRun(_ context.Context, runID, product string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runKey(runID, product))
	return nil
}
