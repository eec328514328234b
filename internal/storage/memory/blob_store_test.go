package memory

import (
	"context"
	"errors"
	"testing"

	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/storage"
)

func rows(n int) []domain.FactorRow {
	out := make([]domain.FactorRow, n)
	for i := range out {
		out[i] = domain.FactorRow{
			Date:       "2023-01-03",
			Product:    "equity",
			Instrument: "600000",
			Seconds:    int64(34200 + 3*i),
			Factor:     "vwap",
			Value:      float64(i),
		}
	}
	return out
}

func TestBlobStore_TempLifecycle(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	if _, err := store.ReadTemp(ctx, "run1", "equity"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing temp blob, got %v", err)
	}

	if err := store.WriteTemp(ctx, "run1", "equity", rows(3)); err != nil {
		t.Fatalf("WriteTemp failed: %v", err)
	}
	got, err := store.ReadTemp(ctx, "run1", "equity")
	if err != nil {
		t.Fatalf("ReadTemp failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}

	// WriteTemp replaces, never appends.
	if err := store.WriteTemp(ctx, "run1", "equity", rows(5)); err != nil {
		t.Fatalf("WriteTemp failed: %v", err)
	}
	got, err = store.ReadTemp(ctx, "run1", "equity")
	if err != nil {
		t.Fatalf("ReadTemp failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 rows after rewrite, got %d", len(got))
	}

	if err := store.DeleteTemp(ctx, "run1", "equity"); err != nil {
		t.Fatalf("DeleteTemp failed: %v", err)
	}
	if _, err := store.ReadTemp(ctx, "run1", "equity"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after DeleteTemp, got %v", err)
	}
}

func TestBlobStore_FinalReplaces(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	if _, err := store.ReadFinal(ctx, "equity", "default"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing final blob, got %v", err)
	}

	if err := store.WriteFinal(ctx, "equity", "default", rows(3)); err != nil {
		t.Fatalf("WriteFinal failed: %v", err)
	}
	if err := store.WriteFinal(ctx, "equity", "default", rows(7)); err != nil {
		t.Fatalf("WriteFinal failed: %v", err)
	}

	got, err := store.ReadFinal(ctx, "equity", "default")
	if err != nil {
		t.Fatalf("ReadFinal failed: %v", err)
	}
	if len(got) != 7 {
		t.Errorf("expected final blob replaced with 7 rows, got %d", len(got))
	}
}

func TestBlobStore_CopiesRows(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	in := rows(2)
	if err := store.WriteTemp(ctx, "run1", "equity", in); err != nil {
		t.Fatalf("WriteTemp failed: %v", err)
	}
	in[0].Value = 999

	got, err := store.ReadTemp(ctx, "run1", "equity")
	if err != nil {
		t.Fatalf("ReadTemp failed: %v", err)
	}
	if got[0].Value == 999 {
		t.Error("store must not alias caller's slice")
	}
}
