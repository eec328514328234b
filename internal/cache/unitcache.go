package cache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"

	"tick-factor-pipeline/internal/blobio"
	"tick-factor-pipeline/internal/domain"
)

// ErrMiss is returned by UnitCache.Get when no entry exists for a unit.
var ErrMiss = errors.New("unit cache miss")

// UnitCache is the level-2 cache: disk-resident, keyed by unit key,
// shared across processes and runs via the filesystem. Entries hold
// precomputed multi-day join results and are never evicted;
// invalidation is an explicit Delete by an operator.
type UnitCache struct {
	dir string
}

// NewUnitCache creates (if needed) the cache directory.
func NewUnitCache(dir string) (*UnitCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &UnitCache{dir: dir}, nil
}

// Get decodes a unit's entry into v. Returns ErrMiss if absent;
// callers recompute the join on a miss and Put the result.
func (c *UnitCache) Get(unit domain.WorkUnitKey, v any) error {
	data, err := os.ReadFile(c.path(unit))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMiss
		}
		return fmt.Errorf("cache: read %s: %w", unit, err)
	}
	return blobio.Unmarshal(data, v)
}

// Put writes a unit's entry through an atomic rename, replacing any
// existing entry. Concurrent writers to the same key leave the last
// writer's bytes intact; readers never observe a torn file.
func (c *UnitCache) Put(unit domain.WorkUnitKey, v any) error {
	path := c.path(unit)

	data, err := blobio.Marshal(v)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", unit, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: rename %s: %w", unit, err)
	}
	return nil
}

// Delete removes a unit's entry. Missing entries are not an error.
func (c *UnitCache) Delete(unit domain.WorkUnitKey) error {
	err := os.Remove(c.path(unit))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: delete %s: %w", unit, err)
	}
	return nil
}

// path derives a filesystem-safe file name from the unit key digest.
func (c *UnitCache) path(unit domain.WorkUnitKey) string {
	sum := sha256.Sum256([]byte(unit.String()))
	return filepath.Join(c.dir, base58.Encode(sum[:])+".zst")
}
