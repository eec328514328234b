package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tick-factor-pipeline/internal/blobio"
	"tick-factor-pipeline/internal/cache"
	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// FileSource reads combined per-date blobs from disk. One file holds
// every instrument's ticks for one (product, date); consecutive units
// in a page usually share a file, so decompressed blobs go through the
// level-1 day cache.
//
// Layout: <dir>/<product>/<date>.zst, each a blobio-encoded
// map[string][]domain.RawTick keyed by instrument.
type FileSource struct {
	dir  string
	days *cache.DayCache
}

// NewFileSource creates a source rooted at dir with the given level-1
// cache. The cache is process-local; each worker process owns its own.
func NewFileSource(dir string, days *cache.DayCache) *FileSource {
	return &FileSource{dir: dir, days: days}
}

var _ TickSource = (*FileSource)(nil)

// Fetch returns the unit's ticks, or storage.ErrNotFound when the date
// file or the instrument is absent.
func (s *FileSource) Fetch(_ context.Context, unit domain.WorkUnitKey) ([]domain.RawTick, error) {
	path := filepath.Join(s.dir, unit.Product, unit.Date+".zst")

	blob, err := s.loadDay(cache.DayKey{Date: unit.Date, Path: path})
	if err != nil {
		return nil, err
	}

	ticks, ok := blob.Ticks[unit.Instrument]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := make([]domain.RawTick, len(ticks))
	copy(out, ticks)
	return out, nil
}

// WriteDay serializes one date's combined blob. Used by ingest tooling
// and tests; the pipeline itself only reads.
func (s *FileSource) WriteDay(product, date string, ticks map[string][]domain.RawTick) error {
	dir := filepath.Join(s.dir, product)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("source: create product dir: %w", err)
	}

	data, err := blobio.Marshal(ticks)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, date+".zst")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("source: write day blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("source: rename day blob: %w", err)
	}
	// A cached copy of a replaced date must not outlive the rewrite.
	// WriteDay is ingest-side and rare, so dropping the whole level-1
	// cache is acceptable.
	s.days.Purge()
	return nil
}

func (s *FileSource) loadDay(key cache.DayKey) (*cache.DayBlob, error) {
	if blob, ok := s.days.Get(key); ok {
		return blob, nil
	}

	data, err := os.ReadFile(key.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("source: read day blob: %w", err)
	}

	ticks := make(map[string][]domain.RawTick)
	if err := blobio.Unmarshal(data, &ticks); err != nil {
		return nil, err
	}

	blob := &cache.DayBlob{Ticks: ticks}
	s.days.Put(key, blob)
	return blob, nil
}
