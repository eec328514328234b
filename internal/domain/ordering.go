package domain

import "sort"

// SortUnits orders unit keys by the canonical (date, product,
// instrument) ordering. Partition input must be sorted this way.
func SortUnits(units []WorkUnitKey) {
	sort.Slice(units, func(i, j int) bool {
		return CompareUnits(units[i], units[j]) < 0
	})
}

// SortFactorRows orders rows by (date, product, instrument, factor,
// seconds). Gives deterministic blob content independent of worker
// completion order.
func SortFactorRows(rows []FactorRow) {
	sort.Slice(rows, func(i, j int) bool {
		return compareFactorRows(&rows[i], &rows[j]) < 0
	})
}

func compareFactorRows(a, b *FactorRow) int {
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
	if a.Factor != b.Factor {
		if a.Factor < b.Factor {
			return -1
		}
		return 1
	}
	if a.Seconds != b.Seconds {
		if a.Seconds < b.Seconds {
			return -1
		}
		return 1
	}
	return 0
}
