package source

import (
	"context"
	"sync"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// Stub is an in-memory tick source for tests.
type Stub struct {
	mu    sync.RWMutex
	ticks map[string][]domain.RawTick
	fail  map[string]error
}

// NewStub creates an empty stub source.
func NewStub() *Stub {
	return &Stub{
		ticks: make(map[string][]domain.RawTick),
		fail:  make(map[string]error),
	}
}

var _ TickSource = (*Stub)(nil)

// Add registers ticks for a unit.
func (s *Stub) Add(unit domain.WorkUnitKey, ticks []domain.RawTick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[unit.String()] = ticks
}

// FailWith makes Fetch return err for a unit.
func (s *Stub) FailWith(unit domain.WorkUnitKey, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[unit.String()] = err
}

// Fetch returns registered ticks or storage.ErrNotFound.
func (s *Stub) Fetch(_ context.Context, unit domain.WorkUnitKey) ([]domain.RawTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.fail[unit.String()]; ok {
		return nil, err
	}
	ticks, ok := s.ticks[unit.String()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]domain.RawTick, len(ticks))
	copy(out, ticks)
	return out, nil
}
