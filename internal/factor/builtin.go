package factor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tick-factor-pipeline/internal/cache"
	"tick-factor-pipeline/internal/domain"
	"tick-factor-pipeline/internal/source"
	"tick-factor-pipeline/internal/storage"
)

// DefaultRegistry returns a registry populated with the built-in
// factors. ticks supplies the close history for rolling_close_vol;
// either argument may be nil, history-dependent factors then work from
// intraday data only.
func DefaultRegistry(unitCache *cache.UnitCache, ticks source.TickSource) *Registry {
	r := NewRegistry()
	_ = r.Register("slot_return", func() Factor { return &slotReturn{} })
	_ = r.Register("vwap", func() Factor { return &vwap{} })
	_ = r.Register("rolling_close_vol", func() Factor {
		return &rollingCloseVol{cache: unitCache, ticks: ticks, window: 20}
	})
	return r
}

// slotReturn is the per-slot log return of the last price.
type slotReturn struct{}

func (f *slotReturn) ID() string { return "slot_return" }

func (f *slotReturn) Apply(_ context.Context, grid *domain.NormalizedGrid) ([]domain.FactorRow, error) {
	values := make([]float64, len(grid.Rows))
	for i := range grid.Rows {
		if i == 0 || grid.Rows[i-1].LastPrice <= 0 || grid.Rows[i].LastPrice <= 0 {
			values[i] = 0
			continue
		}
		values[i] = math.Log(grid.Rows[i].LastPrice / grid.Rows[i-1].LastPrice)
	}
	return rowsFor(grid, f.ID(), values), nil
}

// vwap is the cumulative volume-weighted average price. Synthesized
// slots contribute zero volume, so the running value simply holds.
type vwap struct{}

func (f *vwap) ID() string { return "vwap" }

func (f *vwap) Apply(_ context.Context, grid *domain.NormalizedGrid) ([]domain.FactorRow, error) {
	values := make([]float64, len(grid.Rows))
	var cumTurnover, cumVolume float64
	for i := range grid.Rows {
		cumTurnover += grid.Rows[i].Turnover
		cumVolume += grid.Rows[i].Volume
		if cumVolume > 0 {
			values[i] = cumTurnover / cumVolume
		} else {
			values[i] = grid.Rows[i].LastPrice
		}
	}
	return rowsFor(grid, f.ID(), values), nil
}

// closeHistory is the level-2 cache payload for rollingCloseVol: the
// instrument's daily closing prices strictly before one unit's date,
// oldest first.
type closeHistory struct {
	Closes []float64
}

// rollingCloseVol is the annualization-free standard deviation of
// daily close-to-close returns over a trailing window. The multi-day
// close join is derived from the tick source alone and cached in the
// level-2 unit cache keyed by the full unit, so an entry's content is
// a pure function of source data: the first writer and any later
// writer produce the same bytes, and a reader may recompute on a miss.
type rollingCloseVol struct {
	cache  *cache.UnitCache
	ticks  source.TickSource
	window int
}

func (f *rollingCloseVol) ID() string { return "rolling_close_vol" }

func (f *rollingCloseVol) Apply(ctx context.Context, grid *domain.NormalizedGrid) ([]domain.FactorRow, error) {
	if len(grid.Rows) == 0 {
		return nil, nil
	}

	prior, err := f.history(ctx, grid.Unit)
	if err != nil {
		return nil, err
	}
	closes := append(prior, grid.Rows[len(grid.Rows)-1].LastPrice)

	vol := trailingVol(closes, f.window)
	values := make([]float64, len(grid.Rows))
	for i := range values {
		values[i] = vol
	}
	return rowsFor(grid, f.ID(), values), nil
}

// history returns the unit's trailing prior closes through the level-2
// cache, check-then-write. A lost write only costs the next reader a
// recompute.
func (f *rollingCloseVol) history(ctx context.Context, unit domain.WorkUnitKey) ([]float64, error) {
	hist := &closeHistory{}
	if f.cache != nil {
		err := f.cache.Get(unit, hist)
		if err == nil {
			return hist.Closes, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			return nil, err
		}
	}

	closes, err := f.loadCloses(ctx, unit)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		if err := f.cache.Put(unit, &closeHistory{Closes: closes}); err != nil {
			return nil, err
		}
	}
	return closes, nil
}

// loadCloses fetches the last traded price of each weekday preceding
// the unit's date, walking back until the window is filled or the
// lookback horizon is exhausted. Dates without source data are skipped.
func (f *rollingCloseVol) loadCloses(ctx context.Context, unit domain.WorkUnitKey) ([]float64, error) {
	if f.ticks == nil {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", unit.Date)
	if err != nil {
		return nil, fmt.Errorf("rolling_close_vol: parse date of %s: %w", unit, err)
	}

	// Horizon in calendar days: the window in trading days plus
	// weekend slack and a few holidays.
	horizon := f.window*2 + 10
	var closes []float64
	for i := 0; i < horizon && len(closes) < f.window; i++ {
		day = day.AddDate(0, 0, -1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		prior := domain.WorkUnitKey{
			Date:       day.Format("2006-01-02"),
			Product:    unit.Product,
			Instrument: unit.Instrument,
		}
		ticks, err := f.ticks.Fetch(ctx, prior)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("rolling_close_vol: load close of %s: %w", prior, err)
		}
		if len(ticks) == 0 {
			continue
		}
		closes = append(closes, ticks[len(ticks)-1].LastPrice)
	}

	// Collected newest first; returns want oldest first.
	for i, j := 0, len(closes)-1; i < j; i, j = i+1, j-1 {
		closes[i], closes[j] = closes[j], closes[i]
	}
	return closes, nil
}

func trailingVol(closes []float64, window int) float64 {
	if len(closes) < 2 {
		return 0
	}
	start := len(closes) - window - 1
	if start < 0 {
		start = 0
	}
	var rets []float64
	for i := start + 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}
	if len(rets) < 2 {
		return 0
	}
	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var ss float64
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss / float64(len(rets)-1))
}
