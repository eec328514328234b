package cache

import (
	"fmt"
	"testing"

	"tick-factor-pipeline/internal/domain"
)

func dayBlob(instrument string) *DayBlob {
	return &DayBlob{Ticks: map[string][]domain.RawTick{
		instrument: {{Timestamp: "09:30:00", LastPrice: 10}},
	}}
}

func TestDayCache_PutGet(t *testing.T) {
	c, err := NewDayCache(4)
	if err != nil {
		t.Fatalf("NewDayCache failed: %v", err)
	}

	key := DayKey{Date: "2023-01-03", Path: "/data/equity/2023-01-03.zst"}
	c.Put(key, dayBlob("600000"))

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if _, ok := got.Ticks["600000"]; !ok {
		t.Error("cached blob lost its ticks")
	}

	if _, ok := c.Get(DayKey{Date: "2023-01-04", Path: "other"}); ok {
		t.Error("unexpected hit for unknown key")
	}
}

func TestDayCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewDayCache(2)
	if err != nil {
		t.Fatalf("NewDayCache failed: %v", err)
	}

	k1 := DayKey{Date: "2023-01-03", Path: "a"}
	k2 := DayKey{Date: "2023-01-04", Path: "b"}
	k3 := DayKey{Date: "2023-01-05", Path: "c"}

	c.Put(k1, dayBlob("i1"))
	c.Put(k2, dayBlob("i2"))

	// Touch k1 so k2 becomes the eviction victim.
	if _, ok := c.Get(k1); !ok {
		t.Fatal("expected hit for k1")
	}
	c.Put(k3, dayBlob("i3"))

	if _, ok := c.Get(k2); ok {
		t.Error("k2 should have been evicted")
	}
	if _, ok := c.Get(k1); !ok {
		t.Error("k1 should have survived (recently used)")
	}
	if _, ok := c.Get(k3); !ok {
		t.Error("k3 should be present")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestDayCache_BoundedSize(t *testing.T) {
	c, err := NewDayCache(5)
	if err != nil {
		t.Fatalf("NewDayCache failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		c.Put(DayKey{Date: fmt.Sprintf("2023-01-%02d", i+1), Path: "p"}, dayBlob("x"))
	}
	if c.Len() > 5 {
		t.Errorf("cache exceeded bound: %d entries", c.Len())
	}
}

func TestDayCache_InvalidSize(t *testing.T) {
	if _, err := NewDayCache(0); err == nil {
		t.Error("expected error for size 0")
	}
}
