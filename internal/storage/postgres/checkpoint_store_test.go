package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

func unit(date, instrument string) domain.WorkUnitKey {
	return domain.WorkUnitKey{Date: date, Product: "equity", Instrument: instrument}
}

func record(runID string, u domain.WorkUnitKey, status domain.CheckpointStatus) *domain.CheckpointRecord {
	return &domain.CheckpointRecord{
		RunID:       runID,
		Product:     u.Product,
		Unit:        u,
		Status:      status,
		CompletedAt: 1700000000000,
	}
}

func TestCheckpointStore_RecordAndLastCompleted(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	units := []domain.WorkUnitKey{
		unit("2024-03-01", "600000"),
		unit("2024-03-01", "600001"),
		unit("2024-03-04", "600000"),
	}
	for _, u := range units {
		err := store.RecordCompletion(ctx, record("run-1", u, domain.StatusDone))
		require.NoError(t, err)
	}

	last, err := store.LastCompleted(ctx, "run-1", "equity")
	require.NoError(t, err)
	assert.Equal(t, units[2], last)
}

func TestCheckpointStore_LastCompletedNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	_, err := store.LastCompleted(ctx, "run-1", "equity")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCheckpointStore_RecordCompletionIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	u := unit("2024-03-01", "600000")
	require.NoError(t, store.RecordCompletion(ctx, record("run-1", u, domain.StatusDone)))

	// Replaying the same unit must not fail or change the set.
	require.NoError(t, store.RecordCompletion(ctx, record("run-1", u, domain.StatusDone)))

	completed, err := store.CompletedSet(ctx, "run-1", "equity")
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestCheckpointStore_CompletedSet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	done := unit("2024-03-01", "600000")
	missing := unit("2024-03-01", "600001")
	require.NoError(t, store.RecordCompletion(ctx, record("run-1", done, domain.StatusDone)))
	require.NoError(t, store.RecordCompletion(ctx, record("run-1", missing, domain.StatusMissing)))

	completed, err := store.CompletedSet(ctx, "run-1", "equity")
	require.NoError(t, err)

	// MISSING counts as completed: the unit was handled, just without data.
	assert.Len(t, completed, 2)
	assert.Contains(t, completed, done.String())
	assert.Contains(t, completed, missing.String())
}

func TestCheckpointStore_RunIsolation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	require.NoError(t, store.RecordCompletion(ctx, record("run-1", unit("2024-03-01", "600000"), domain.StatusDone)))
	require.NoError(t, store.RecordCompletion(ctx, record("run-2", unit("2024-03-04", "600001"), domain.StatusDone)))

	completed, err := store.CompletedSet(ctx, "run-1", "equity")
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	last, err := store.LastCompleted(ctx, "run-1", "equity")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", last.Date)
}

func TestCheckpointStore_DeleteRun(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	require.NoError(t, store.RecordCompletion(ctx, record("run-1", unit("2024-03-01", "600000"), domain.StatusDone)))
	require.NoError(t, store.RecordCompletion(ctx, record("run-2", unit("2024-03-01", "600000"), domain.StatusDone)))

	require.NoError(t, store.DeleteRun(ctx, "run-1", "equity"))

	_, err := store.LastCompleted(ctx, "run-1", "equity")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Other runs are untouched.
	_, err = store.LastCompleted(ctx, "run-2", "equity")
	assert.NoError(t, err)
}

func TestCheckpointStore_RecordCompletionValidation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCheckpointStore(pool)

	err := store.RecordCompletion(ctx, &domain.CheckpointRecord{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
