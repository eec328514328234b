package domain

// RawTick is one market observation as delivered by a tick source.
// Timestamp is a wall-clock time of day ("HH:MM:SS"); ordering is
// timestamp-ascending within a session and timestamps are unique per
// session. Activity fields (Volume, Turnover, TradeCount) describe what
// happened in the slot ending at Timestamp; the remaining fields are
// state observed at Timestamp.
type RawTick struct {
	Timestamp    string  // time of day, HH:MM:SS
	LastPrice    float64 // last traded price
	BidPrice     float64 // best bid
	AskPrice     float64 // best ask
	OpenInterest float64 // open interest (zero for cash products)
	Volume       float64 // traded volume in this slot (activity)
	Turnover     float64 // traded amount in this slot (activity)
	TradeCount   int     // trades in this slot (activity)
}

// GridRow is one slot of a normalized grid. Seconds is the time of day
// in seconds since midnight, so recess-aware arithmetic stays integral.
// Synthesized marks rows the normalizer invented to fill a gap.
type GridRow struct {
	Seconds      int64
	LastPrice    float64
	BidPrice     float64
	AskPrice     float64
	OpenInterest float64
	Volume       float64
	Turnover     float64
	TradeCount   int
	Synthesized  bool
}

// NormalizedGrid is a tick sequence sampled at the product's interval,
// the unit of input to factor functions.
type NormalizedGrid struct {
	Unit WorkUnitKey
	Rows []GridRow
}

// FactorRow is one derived value: a single factor's output for one
// grid slot of one work unit. The accumulation buffer for a run is a
// slice of these, ordered by (unit, factor, seconds).
type FactorRow struct {
	Date       string
	Product    string
	Instrument string
	Seconds    int64
	Factor     string
	Value      float64
}
