package indicator

// MACD defaults.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// EMA computes an exponential moving average with smoothing factor
// alpha = 2/(span+1), seeded from the first value. No bias correction is
// applied, so the whole output is defined from the first bar.
func EMA(vals []float64, span int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = vals[0]
	for t := 1; t < len(vals); t++ {
		out[t] = alpha*vals[t] + (1-alpha)*out[t-1]
	}
	return out
}

// MACDResult holds the MACD line and its signal line.
type MACDResult struct {
	MACD   []float64
	Signal []float64
}

// MACD computes the moving average convergence divergence line (fast EMA
// minus slow EMA) and its signal line (EMA of the MACD line) over a
// chronological close series. All three EMAs use the seeded recurrence, so
// both outputs have no warm-up gap.
func MACD(closes []float64, fast, slow, signalSpan int) MACDResult {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macd := make([]float64, len(closes))
	for t := range macd {
		macd[t] = emaFast[t] - emaSlow[t]
	}

	return MACDResult{MACD: macd, Signal: EMA(macd, signalSpan)}
}
