package blobio

import (
	"bytes"
	"reflect"
	"testing"

	"tick-factor-pipeline/internal/domain"
)

func TestMarshalUnmarshal(t *testing.T) {
	want := []domain.FactorRow{
		{Date: "2024-03-01", Product: "equity", Instrument: "600000", Seconds: 34200, Factor: "vwap", Value: 10.53},
		{Date: "2024-03-01", Product: "equity", Instrument: "600000", Seconds: 34203, Factor: "vwap", Value: 10.55},
	}

	data, err := Marshal(want)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got []domain.FactorRow
	if err := Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	rows := []domain.FactorRow{
		{Date: "2024-03-01", Product: "equity", Instrument: "600000", Seconds: 34200, Factor: "vwap", Value: 10.53},
	}

	first, err := Marshal(rows)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	second, err := Marshal(rows)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("equal input must produce identical bytes")
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	var out []domain.FactorRow
	if err := Unmarshal([]byte("not a blob"), &out); err == nil {
		t.Error("expected an error for non-zstd input")
	}
}
