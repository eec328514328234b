package domain

import "fmt"

// WorkUnitKey identifies one unit of computation: one instrument on one
// trading date for one product. It is the checkpoint and cache key.
type WorkUnitKey struct {
	Date       string // trading date, YYYY-MM-DD
	Product    string // product family, e.g. "equity", "index_future"
	Instrument string // instrument or stock code
}

// String returns the canonical key representation used for map keys
// and checkpoint rows.
func (k WorkUnitKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Date, k.Product, k.Instrument)
}

// CompareUnits returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Canonical ordering is (date ASC, product ASC, instrument ASC). The
// partition input and the checkpoint resume query must both use this
// ordering, otherwise resume positions are meaningless.
func CompareUnits(a, b WorkUnitKey) int {
	if a.Date != b.Date {
		if a.Date < b.Date {
			return -1
		}
		return 1
	}
	if a.Product != b.Product {
		if a.Product < b.Product {
			return -1
		}
		return 1
	}
	if a.Instrument != b.Instrument {
		if a.Instrument < b.Instrument {
			return -1
		}
		return 1
	}
	return 0
}
