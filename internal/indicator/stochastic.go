package indicator

import (
	"math"

	"stocklens/internal/model"
)

// Stochastic oscillator defaults.
const (
	DefaultStochPeriod = 14
	DefaultStochSmooth = 3

	overboughtLevel = 80
	oversoldLevel   = 20
)

// StochResult holds the raw and smoothed oscillator plus the per-bar
// classification.
type StochResult struct {
	K      []float64
	D      []float64
	Status []model.StochStatus
}

// Stochastic computes %K, %D and the overbought/oversold status over
// chronological high/low/close series.
//
// The rolling extrema use a strict window: the first period-1 positions of
// %K are undefined, and %D adds its own smooth-1 bars of warm-up on top.
// A zero high-low range leaves %K undefined for that bar rather than
// dividing by zero. Undefined %K classifies as Neutral.
func Stochastic(highs, lows, closes []float64, period, smooth int) StochResult {
	n := len(closes)
	lowest := RollingMin(lows, period)
	highest := RollingMax(highs, period)

	k := make([]float64, n)
	for t := 0; t < n; t++ {
		rng := highest[t] - lowest[t]
		if math.IsNaN(rng) || rng == 0 {
			k[t] = nan
			continue
		}
		k[t] = (closes[t] - lowest[t]) / rng * 100
	}

	d := RollingMean(k, smooth)

	status := make([]model.StochStatus, n)
	for t := 0; t < n; t++ {
		switch {
		case k[t] > overboughtLevel:
			status[t] = model.StatusOverbought
		case k[t] < oversoldLevel:
			status[t] = model.StatusOversold
		default:
			// NaN comparisons are false, so undefined %K lands here.
			status[t] = model.StatusNeutral
		}
	}

	return StochResult{K: k, D: d, Status: status}
}
