// Package compute orchestrates the indicator core: it takes a price table
// and produces the full set of derived series, signal events, and growth
// metrics, either per ticker (snapshots) or aligned to input rows
// (columns).
//
// The engine is stateless. Every call recomputes from scratch; tickers are
// independent, so the work fans out across goroutines and merges by union.
package compute

import (
	"math"
	"sync"
	"time"

	"stocklens/internal/analytics"
	"stocklens/internal/divergence"
	"stocklens/internal/indicator"
	"stocklens/internal/metrics"
	"stocklens/internal/model"
	"stocklens/internal/pattern"
	"stocklens/internal/table"
)

// Params carries every indicator parameter explicitly. There is no hidden
// global configuration.
type Params struct {
	RSIPeriod   int `yaml:"rsi_period" json:"rsi_period"`
	StochPeriod int `yaml:"stoch_period" json:"stoch_period"`
	StochSmooth int `yaml:"stoch_smooth" json:"stoch_smooth"`
	MFIPeriod   int `yaml:"mfi_period" json:"mfi_period"`
	MACDFast    int `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow    int `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal  int `yaml:"macd_signal" json:"macd_signal"`
	DivWindow   int `yaml:"div_window" json:"div_window"`
}

// DefaultParams returns the conventional parameter set.
func DefaultParams() Params {
	return Params{
		RSIPeriod:   indicator.DefaultRSIPeriod,
		StochPeriod: indicator.DefaultStochPeriod,
		StochSmooth: indicator.DefaultStochSmooth,
		MFIPeriod:   indicator.DefaultMFIPeriod,
		MACDFast:    indicator.DefaultMACDFast,
		MACDSlow:    indicator.DefaultMACDSlow,
		MACDSignal:  indicator.DefaultMACDSignal,
		DivWindow:   divergence.DefaultWindow,
	}
}

// Engine computes snapshots and row-aligned columns for price tables.
type Engine struct {
	params Params
	prom   *metrics.Metrics // nil disables instrumentation
}

// NewEngine creates an engine with the given parameters. prom may be nil.
func NewEngine(params Params, prom *metrics.Metrics) *Engine {
	return &Engine{params: params, prom: prom}
}

// Params returns the engine's parameter set.
func (e *Engine) Params() Params { return e.params }

// Snapshot computes every derived series, event, and metric for every
// ticker in the table. Tickers are computed concurrently; no input is
// mutated and no state survives the call.
func (e *Engine) Snapshot(t *table.Table) *model.Snapshot {
	start := time.Now()

	cagr := analytics.AnnualCAGR(t)
	vol := make(map[string][]model.VolatilitySample)
	for _, s := range analytics.MonthlyVolatility(t) {
		vol[s.Ticker] = append(vol[s.Ticker], s)
	}

	snap := &model.Snapshot{
		ComputedAt: time.Now().UTC(),
		Tickers:    make(map[string]*model.TickerSnapshot, len(t.Tickers())),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, ticker := range t.Tickers() {
		ticker := ticker
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := e.tickerSnapshot(ticker, t.Group(ticker))
			ts.CAGR = cagr[ticker]
			ts.Volatility = vol[ticker]
			mu.Lock()
			snap.Tickers[ticker] = ts
			mu.Unlock()
		}()
	}
	wg.Wait()

	if e.prom != nil {
		e.prom.SnapshotsTotal.Inc()
		e.prom.SnapshotDur.Observe(time.Since(start).Seconds())
		e.prom.TickersComputed.Set(float64(len(snap.Tickers)))
	}
	return snap
}

func (e *Engine) tickerSnapshot(ticker string, bars []model.PriceBar) *model.TickerSnapshot {
	p := e.params

	dates := make([]time.Time, len(bars))
	volumes := make([]int64, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
		volumes[i] = b.Volume
	}
	highs := table.Highs(bars)
	lows := table.Lows(bars)
	closes := table.Closes(bars)
	vols := table.Volumes(bars)

	stoch := indicator.Stochastic(highs, lows, closes, p.StochPeriod, p.StochSmooth)
	mfi := indicator.MFI(highs, lows, closes, vols, p.MFIPeriod)
	macd := indicator.MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	div := divergence.Detect(dates, closes, mfi, p.DivWindow)

	return &model.TickerSnapshot{
		Ticker:      ticker,
		Dates:       dates,
		Close:       closes,
		Volume:      volumes,
		RSI:         indicator.RSI(closes, p.RSIPeriod),
		PercentK:    stoch.K,
		PercentD:    stoch.D,
		Status:      stoch.Status,
		MFI:         mfi,
		MACD:        macd.MACD,
		Signal:      macd.Signal,
		BullDiv:     div.Bull,
		BearDiv:     div.Bear,
		Divergences: div.Events,
		Patterns:    pattern.Detect(bars),
	}
}

// Columns holds derived indicator columns positionally aligned to the input
// table's rows. Positions belonging to other tickers' warm-ups stay NaN.
type Columns struct {
	RSI      model.Series
	PercentK model.Series
	PercentD model.Series
	Status   []model.StochStatus
	MFI      model.Series
	MACD     model.Series
	Signal   model.Series
	BullDiv  []bool
	BearDiv  []bool
}

// Columns computes the row-aligned view of the momentum and trend
// indicators plus the divergence flags. Grouping preserves per-ticker
// chronological order; results are reassembled in the same row order as
// the input table.
func (e *Engine) Columns(t *table.Table) (*Columns, error) {
	p := e.params
	n := t.Len()
	out := &Columns{
		RSI:      nanSeries(n),
		PercentK: nanSeries(n),
		PercentD: nanSeries(n),
		Status:   make([]model.StochStatus, n),
		MFI:      nanSeries(n),
		MACD:     nanSeries(n),
		Signal:   nanSeries(n),
		BullDiv:  make([]bool, n),
		BearDiv:  make([]bool, n),
	}

	for _, ticker := range t.Tickers() {
		bars := t.Group(ticker)
		idx := t.GroupIndexes(ticker)

		dates := make([]time.Time, len(bars))
		for i, b := range bars {
			dates[i] = b.Date
		}
		highs := table.Highs(bars)
		lows := table.Lows(bars)
		closes := table.Closes(bars)
		vols := table.Volumes(bars)

		rsi := indicator.RSI(closes, p.RSIPeriod)
		stoch := indicator.Stochastic(highs, lows, closes, p.StochPeriod, p.StochSmooth)
		mfi := indicator.MFI(highs, lows, closes, vols, p.MFIPeriod)
		macd := indicator.MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
		div, err := divergence.DetectColumns(dates, closes, mfi, p.DivWindow)
		if err != nil {
			return nil, err
		}

		for gi, ri := range idx {
			out.RSI[ri] = rsi[gi]
			out.PercentK[ri] = stoch.K[gi]
			out.PercentD[ri] = stoch.D[gi]
			out.Status[ri] = stoch.Status[gi]
			out.MFI[ri] = mfi[gi]
			out.MACD[ri] = macd.MACD[gi]
			out.Signal[ri] = macd.Signal[gi]
			out.BullDiv[ri] = div.Bull[gi]
			out.BearDiv[ri] = div.Bear[gi]
		}
	}
	return out, nil
}

func nanSeries(n int) model.Series {
	s := make(model.Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
