// Package fs provides the disk-backed blob store: zstd-compressed
// accumulation buffers under a single base directory, temp blobs
// separated from final blobs.
package fs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"

	"tick-factor-pipeline/internal/blobio"
	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

// BlobStore is a filesystem implementation of storage.BlobStore.
// Layout: <dir>/temp/<name>.zst and <dir>/final/<name>.zst where name
// is a base58 digest of the logical key, keeping run ids and product
// names out of path-separator trouble.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the store's directory tree.
func NewBlobStore(dir string) (*BlobStore, error) {
	for _, sub := range []string{"temp", "final"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("fs: create %s dir: %w", sub, err)
		}
	}
	return &BlobStore{dir: dir}, nil
}

var _ storage.BlobStore = (*BlobStore)(nil)

// WriteTemp replaces the run's partial result blob. Write goes through
// a sibling temp file and a rename, so readers never observe a torn
// temp blob.
func (s *BlobStore) WriteTemp(_ context.Context, runID, product string, rows []domain.FactorRow) error {
	return s.write(s.tempPath(runID, product), rows)
}

// ReadTemp loads the run's partial result blob.
func (s *BlobStore) ReadTemp(_ context.Context, runID, product string) ([]domain.FactorRow, error) {
	return s.read(s.tempPath(runID, product))
}

// WriteFinal persists the completed result, replacing any prior final
// blob for the same (product, factor set).
func (s *BlobStore) WriteFinal(_ context.Context, product, factorSet string, rows []domain.FactorRow) error {
	return s.write(s.finalPath(product, factorSet), rows)
}

// ReadFinal loads a completed result.
func (s *BlobStore) ReadFinal(_ context.Context, product, factorSet string) ([]domain.FactorRow, error) {
	return s.read(s.finalPath(product, factorSet))
}

// DeleteTemp discards the run's partial blob.
func (s *BlobStore) DeleteTemp(_ context.Context, runID, product string) error {
	err := os.Remove(s.tempPath(runID, product))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs: delete temp blob: %w", err)
	}
	return nil
}

func (s *BlobStore) write(path string, rows []domain.FactorRow) error {
	data, err := blobio.Marshal(rows)
	if err != nil {
		return err
	}

	tmp := path + ".partial"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("fs: write blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("fs: rename blob: %w", err)
	}
	return nil
}

func (s *BlobStore) read(path string) ([]domain.FactorRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("fs: read blob: %w", err)
	}

	var rows []domain.FactorRow
	if err := blobio.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BlobStore) tempPath(runID, product string) string {
	return filepath.Join(s.dir, "temp", digestName(runID+"|"+product))
}

func (s *BlobStore) finalPath(product, factorSet string) string {
	return filepath.Join(s.dir, "final", digestName(product+"|"+factorSet))
}

func digestName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return base58.Encode(sum[:]) + ".zst"
}
