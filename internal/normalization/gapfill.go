// Package normalization converts irregular, session-interrupted tick
// streams into a uniform fixed-interval grid.
package normalization

import (
	"fmt"
	"sort"

	"tick-factor-pipeline/internal/calendar"
	"tick-factor-pipeline/internal/domain"
)

// Normalize converts one unit's raw ticks into a fixed-interval grid.
//
// For each pair of consecutive observations the gap is measured with
// the lunch recess subtracted (the recess is a scheduled halt, not a
// data gap). If the adjusted gap exceeds the sampling interval,
// synthesized rows are inserted at exact interval multiples: each
// copies the preceding real observation's state fields and zeroes the
// activity fields (volume, turnover, trade count).
//
// A unit with zero observations yields an empty grid; the caller must
// treat that as a missing unit. A single observation yields no
// synthesis.
func Normalize(unit domain.WorkUnitKey, ticks []domain.RawTick, sess calendar.Session) (*domain.NormalizedGrid, error) {
	grid := &domain.NormalizedGrid{Unit: unit}
	if len(ticks) == 0 {
		return grid, nil
	}

	rows, err := parseTicks(ticks)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", unit, err)
	}

	out := make([]domain.GridRow, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i])
		if i+1 == len(rows) {
			break
		}

		cur, next := rows[i], rows[i+1]
		delta := next.Seconds - cur.Seconds
		if sess.SpansRecess(cur.Seconds, next.Seconds) {
			delta -= sess.RecessDuration
		}
		if delta <= sess.Interval {
			continue
		}

		for t := advance(cur.Seconds, sess); t < next.Seconds; t = advance(t, sess) {
			out = append(out, synthesize(cur, t))
		}
	}

	// Re-sort and re-index. Synthesized timestamps are strictly between
	// their neighbours, so with timestamp-unique input this cannot
	// produce duplicates; verify anyway.
	sort.Slice(out, func(i, j int) bool { return out[i].Seconds < out[j].Seconds })
	for i := 1; i < len(out); i++ {
		if out[i].Seconds == out[i-1].Seconds {
			return nil, fmt.Errorf("normalize %s: duplicate timestamp %s after synthesis",
				unit, FormatClock(out[i].Seconds))
		}
	}

	grid.Rows = out
	return grid, nil
}

// advance moves a timestamp forward by one sampling interval. Stepping
// from at-or-before the recess boundary to after it additionally skips
// the whole recess, so grid spacing stays uniform in session time.
func advance(sec int64, sess calendar.Session) int64 {
	next := sec + sess.Interval
	if sess.SpansRecess(sec, next) {
		next += sess.RecessDuration
	}
	return next
}

// synthesize builds a gap-fill row at time t from the preceding real
// observation. State fields carry forward; activity fields are zeroed,
// since carrying forward volume or turnover would fabricate trades.
func synthesize(prev domain.GridRow, t int64) domain.GridRow {
	return domain.GridRow{
		Seconds:      t,
		LastPrice:    prev.LastPrice,
		BidPrice:     prev.BidPrice,
		AskPrice:     prev.AskPrice,
		OpenInterest: prev.OpenInterest,
		Volume:       0,
		Turnover:     0,
		TradeCount:   0,
		Synthesized:  true,
	}
}

// parseTicks resolves timestamps and enforces strict ascending order.
func parseTicks(ticks []domain.RawTick) ([]domain.GridRow, error) {
	rows := make([]domain.GridRow, 0, len(ticks))
	var prev int64 = -1
	for i := range ticks {
		sec, err := ParseClock(ticks[i].Timestamp)
		if err != nil {
			return nil, err
		}
		if sec <= prev {
			return nil, fmt.Errorf("%w: %s at index %d", ErrUnorderedTicks, ticks[i].Timestamp, i)
		}
		prev = sec
		rows = append(rows, domain.GridRow{
			Seconds:      sec,
			LastPrice:    ticks[i].LastPrice,
			BidPrice:     ticks[i].BidPrice,
			AskPrice:     ticks[i].AskPrice,
			OpenInterest: ticks[i].OpenInterest,
			Volume:       ticks[i].Volume,
			Turnover:     ticks[i].Turnover,
			TradeCount:   ticks[i].TradeCount,
		})
	}
	return rows, nil
}
