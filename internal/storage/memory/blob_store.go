package memory

import (
	"context"
	"sync"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// BlobStore is an in-memory implementation of storage.BlobStore.
// Rows are deep-copied on the way in and out.
type BlobStore struct {
	mu     sync.RWMutex
	temps  map[string][]domain.FactorRow // runID|product
	finals map[string][]domain.FactorRow // product|factorSet
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		temps:  make(map[string][]domain.FactorRow),
		finals: make(map[string][]domain.FactorRow),
	}
}

var _ storage.BlobStore = (*BlobStore)(nil)

// WriteTemp replaces the run's partial result blob.
func (s *BlobStore) WriteTemp(_ context.Context, runID, product string, rows []domain.FactorRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temps[runID+"|"+product] = copyRows(rows)
	return nil
}

// ReadTemp loads the run's partial result blob.
func (s *BlobStore) ReadTemp(_ context.Context, runID, product string) ([]domain.FactorRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.temps[runID+"|"+product]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyRows(rows), nil
}

// WriteFinal persists the completed result.
func (s *BlobStore) WriteFinal(_ context.Context, product, factorSet string, rows []domain.FactorRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finals[product+"|"+factorSet] = copyRows(rows)
	return nil
}

// ReadFinal loads a completed result.
func (s *BlobStore) ReadFinal(_ context.Context, product, factorSet string) ([]domain.FactorRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.finals[product+"|"+factorSet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyRows(rows), nil
}

// DeleteTemp discards the run's partial blob.
func (s *BlobStore) DeleteTemp(_ context.Context, runID, product string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.temps, runID+"|"+product)
	return nil
}

func copyRows(rows []domain.FactorRow) []domain.FactorRow {
	if rows == nil {
		return nil
	}
	out := make([]domain.FactorRow, len(rows))
	copy(out, rows)
	return out
}
