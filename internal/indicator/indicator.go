// Package indicator provides batch technical indicator transforms over
// per-ticker ordered price series.
//
// Every transform is a pure function: input slices are never mutated,
// outputs are freshly allocated, and warm-up positions are NaN. NaN is the
// only undefined marker; values are never silently coerced to zero.
// Degenerate divisions map to documented sentinels (100 for RSI/MFI,
// NaN for stochastic %K) instead of relying on floating-point infinities.
package indicator

import "math"

var nan = math.NaN()
