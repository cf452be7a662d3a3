package indicator

import "math"

// RollingMin returns the trailing-window minimum of vals.
// The first window-1 positions are NaN (strict window, no relaxation).
func RollingMin(vals []float64, window int) []float64 {
	return rollingExtremum(vals, window, window, math.Min)
}

// RollingMax returns the trailing-window maximum of vals.
// The first window-1 positions are NaN.
func RollingMax(vals []float64, window int) []float64 {
	return rollingExtremum(vals, window, window, math.Max)
}

// RollingMinLax is RollingMin with a minimum sample size of 1: positions
// before the window fills use the available prefix. NaN inputs are skipped;
// a position is NaN only when its whole window is NaN.
func RollingMinLax(vals []float64, window int) []float64 {
	return rollingExtremum(vals, window, 1, math.Min)
}

// RollingMaxLax is RollingMax with a minimum sample size of 1.
func RollingMaxLax(vals []float64, window int) []float64 {
	return rollingExtremum(vals, window, 1, math.Max)
}

func rollingExtremum(vals []float64, window, minSamples int, pick func(a, b float64) float64) []float64 {
	out := make([]float64, len(vals))
	for t := range vals {
		if t+1 < minSamples {
			out[t] = nan
			continue
		}
		lo := t - window + 1
		if lo < 0 {
			lo = 0
		}
		ext := nan
		for i := lo; i <= t; i++ {
			if math.IsNaN(vals[i]) {
				continue
			}
			if math.IsNaN(ext) {
				ext = vals[i]
			} else {
				ext = pick(ext, vals[i])
			}
		}
		out[t] = ext
	}
	return out
}

// RollingSum returns the trailing-window sum of vals with a strict window:
// the first window-1 positions are NaN. A NaN anywhere in the window makes
// the position NaN.
func RollingSum(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for t := range vals {
		if t+1 < window {
			out[t] = nan
			continue
		}
		sum := 0.0
		for i := t - window + 1; i <= t; i++ {
			sum += vals[i]
		}
		out[t] = sum
	}
	return out
}

// RollingMean returns the trailing-window simple average with a strict
// window. A NaN anywhere in the window makes the position NaN.
func RollingMean(vals []float64, window int) []float64 {
	out := RollingSum(vals, window)
	w := float64(window)
	for t := range out {
		out[t] /= w
	}
	return out
}

// RollingMeanLax returns the trailing-window simple average with a minimum
// sample size of 1: positions before the window fills average the available
// prefix instead of being left undefined.
func RollingMeanLax(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for t := range vals {
		lo := t - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for i := lo; i <= t; i++ {
			sum += vals[i]
		}
		out[t] = sum / float64(t-lo+1)
	}
	return out
}
