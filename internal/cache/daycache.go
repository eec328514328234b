// Package cache provides the two cache layers of the pipeline: a small
// in-process recency cache for decompressed per-date blobs, and a
// durable disk cache for per-unit multi-day join results.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"tick-factor-pipeline/internal/domain"
)

// DayKey identifies one decompressed per-date source blob.
type DayKey struct {
	Date string
	Path string
}

// DayBlob is a decompressed per-date combined source: all instruments'
// ticks for one date, keyed by instrument code.
type DayBlob struct {
	Ticks map[string][]domain.RawTick
}

// DayCache is the level-1 cache: bounded, least-recently-used,
// process-local. Consecutive units in a page usually hit the same
// per-date blob, so a handful of entries is enough to skip repeated
// decompression.
type DayCache struct {
	inner *lru.Cache[DayKey, *DayBlob]
}

// NewDayCache creates a level-1 cache holding at most size blobs.
func NewDayCache(size int) (*DayCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache: day cache size must be positive, got %d", size)
	}
	inner, err := lru.New[DayKey, *DayBlob](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &DayCache{inner: inner}, nil
}

// Get returns a cached blob and marks it recently used.
func (c *DayCache) Get(key DayKey) (*DayBlob, bool) {
	return c.inner.Get(key)
}

// Put stores a blob, evicting the least recently used entry if full.
func (c *DayCache) Put(key DayKey, blob *DayBlob) {
	c.inner.Add(key, blob)
}

// Len returns the number of cached blobs.
func (c *DayCache) Len() int {
	return c.inner.Len()
}

// Purge drops every entry.
func (c *DayCache) Purge() {
	c.inner.Purge()
}
