package analytics

import (
	"math"

	"stocklens/internal/model"
	"stocklens/internal/table"
)

// MonthlyVolatility computes historical volatility per ticker per calendar
// month: the sample standard deviation of daily log returns within the
// month.
//
// Log returns are taken per ticker over its full chronological series, so
// the first bar of each ticker carries no return. A (ticker, month) group is
// emitted only when it holds at least one return; with a single return the
// sample standard deviation is undefined and the volatility is NaN.
func MonthlyVolatility(t *table.Table) []model.VolatilitySample {
	var out []model.VolatilitySample
	for _, ticker := range t.Tickers() {
		bars := t.Group(ticker)

		// returns[i] is the log return landing on bar i.
		returns := make([]float64, len(bars))
		for i := range returns {
			if i == 0 {
				returns[i] = math.NaN()
				continue
			}
			returns[i] = math.Log(bars[i].Close / bars[i-1].Close)
		}

		for lo := 0; lo < len(bars); {
			hi := lo
			for hi+1 < len(bars) && bars[hi+1].YearMonth() == bars[lo].YearMonth() {
				hi++
			}
			vol, n := sampleStddev(returns[lo : hi+1])
			if n > 0 {
				out = append(out, model.VolatilitySample{
					Ticker:     ticker,
					YearMonth:  bars[lo].YearMonth(),
					Volatility: model.Float(vol),
				})
			}
			lo = hi + 1
		}
	}
	return out
}

// sampleStddev returns the sample standard deviation of the defined values
// and how many there were. Fewer than two defined values yields NaN.
func sampleStddev(vals []float64) (float64, int) {
	n := 0
	sum := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		n++
		sum += v
	}
	if n < 2 {
		return math.NaN(), n
	}
	mean := sum / float64(n)
	ss := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), n
}
