package indicator

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the Relative Strength Index over a chronological close
// series.
//
// Gains and losses are averaged with a simple moving average whose minimum
// sample size is 1, so early positions average the available prefix and the
// output is defined from the very first bar. When the average loss is zero
// the RSI is 100 by convention; the division is never performed.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for t := 1; t < n; t++ {
		delta := closes[t] - closes[t-1]
		if delta > 0 {
			gains[t] = delta
		} else {
			losses[t] = -delta
		}
	}

	avgGain := RollingMeanLax(gains, period)
	avgLoss := RollingMeanLax(losses, period)

	out := make([]float64, n)
	for t := 0; t < n; t++ {
		if avgLoss[t] == 0 {
			out[t] = 100
			continue
		}
		rs := avgGain[t] / avgLoss[t]
		out[t] = 100 - 100/(1+rs)
	}
	return out
}
