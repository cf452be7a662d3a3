package indicator

import "math"

// DefaultMFIPeriod is the conventional MFI lookback.
const DefaultMFIPeriod = 14

// MFI computes the Money Flow Index over chronological high/low/close/volume
// series.
//
// Flows sum over a strict trailing window, so the first period-1 positions
// are undefined (MFI sums rather than averages, no minimum-sample
// relaxation). A flat typical price contributes to neither flow side. When
// the negative flow sum is zero the MFI is 100 by convention, matching the
// RSI boundary rule.
func MFI(highs, lows, closes, volumes []float64, period int) []float64 {
	n := len(closes)
	typical := make([]float64, n)
	for t := 0; t < n; t++ {
		typical[t] = (highs[t] + lows[t] + closes[t]) / 3
	}

	positive := make([]float64, n)
	negative := make([]float64, n)
	for t := 1; t < n; t++ {
		raw := typical[t] * volumes[t]
		switch {
		case typical[t] > typical[t-1]:
			positive[t] = raw
		case typical[t] < typical[t-1]:
			negative[t] = raw
		}
	}

	posSum := RollingSum(positive, period)
	negSum := RollingSum(negative, period)

	out := make([]float64, n)
	for t := 0; t < n; t++ {
		if math.IsNaN(posSum[t]) {
			out[t] = nan
			continue
		}
		if negSum[t] == 0 {
			out[t] = 100
			continue
		}
		ratio := posSum[t] / negSum[t]
		out[t] = 100 - 100/(1+ratio)
	}
	return out
}
