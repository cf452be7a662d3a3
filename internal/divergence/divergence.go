// Package divergence flags bars where price and the money flow index
// disagree at a rolling-window extremum.
//
// The test is an exact-equality comparison against the rolling extremum,
// not a "new extreme since the window began" test. That makes it re-fire on
// plateaued prices and miss near-miss new extrema; the behavior is kept
// deliberately, matching the upstream definition.
package divergence

import (
	"fmt"
	"time"

	"stocklens/internal/indicator"
	"stocklens/internal/model"
	"stocklens/internal/table"
)

// DefaultWindow is the rolling lookback for the extremum comparison.
const DefaultWindow = 14

// Result holds the per-bar divergence flags and the extracted events.
type Result struct {
	Bull   []bool
	Bear   []bool
	Events []model.DivergenceEvent
}

// Detect scans chronological close and MFI series for bullish and bearish
// divergences.
//
// The rolling extrema use a minimum sample size of 1 (the RSI warm-up
// policy, not the stochastic one), so flags can fire from the first bar.
// During the MFI warm-up both the value and its rolling extremum are NaN;
// NaN != NaN holds, so warm-up bars sitting on a price extremum do flag.
// That mirrors the upstream float semantics exactly.
func Detect(dates []time.Time, closes, mfi []float64, window int) Result {
	n := len(closes)
	priceLow := indicator.RollingMinLax(closes, window)
	priceHigh := indicator.RollingMaxLax(closes, window)
	mfiLow := indicator.RollingMinLax(mfi, window)
	mfiHigh := indicator.RollingMaxLax(mfi, window)

	res := Result{
		Bull: make([]bool, n),
		Bear: make([]bool, n),
	}
	for t := 0; t < n; t++ {
		res.Bull[t] = closes[t] == priceLow[t] && mfi[t] != mfiLow[t]
		res.Bear[t] = closes[t] == priceHigh[t] && mfi[t] != mfiHigh[t]

		if res.Bull[t] {
			res.Events = append(res.Events, model.DivergenceEvent{
				Date: dates[t], Kind: model.Bullish,
				Price: closes[t], IndicatorValue: model.Float(mfi[t]),
			})
		}
		if res.Bear[t] {
			res.Events = append(res.Events, model.DivergenceEvent{
				Date: dates[t], Kind: model.Bearish,
				Price: closes[t], IndicatorValue: model.Float(mfi[t]),
			})
		}
	}
	return res
}

// DetectColumns validates that the Close and MFI columns are present and
// row-aligned before detecting. A missing column fails the call immediately
// with no partial output.
func DetectColumns(dates []time.Time, closes, mfi []float64, window int) (Result, error) {
	if closes == nil {
		return Result{}, fmt.Errorf("%w: %s", table.ErrMissingColumn, table.ColClose)
	}
	if err := table.RequireColumns(len(closes), map[string]model.Series{table.ColMFI: mfi}, table.ColMFI); err != nil {
		return Result{}, err
	}
	return Detect(dates, closes, mfi, window), nil
}
