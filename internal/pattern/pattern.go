// Package pattern detects candlestick reversal patterns from OHLC bars.
//
// Each detector is a pure shape rule over a fixed window of one to three
// consecutive bars. Trend context is not modeled: Hammer and HangingMan are
// told apart by body direction alone (bullish body reads as Hammer, bearish
// as HangingMan), applied consistently to both.
package pattern

import (
	"math"

	"stocklens/internal/model"
)

// Pattern names used as PatternFlags keys.
const (
	Doji             = "Doji"
	Hammer           = "Hammer"
	HangingMan       = "HangingMan"
	BullishEngulfing = "BullishEngulfing"
	BearishEngulfing = "BearishEngulfing"
	MorningStar      = "MorningStar"
	EveningStar      = "EveningStar"
)

// Names lists every detected pattern in a stable order.
var Names = []string{
	Doji, Hammer, HangingMan,
	BullishEngulfing, BearishEngulfing,
	MorningStar, EveningStar,
}

// Shape thresholds, relative to the bar's own range or to a neighboring
// body.
const (
	dojiBodyMax    = 0.1 // body vs range
	smallShadowMax = 0.1 // stub shadow vs range
	starBodyMax    = 0.3 // star body vs first big body
	shadowBodyMult = 2.0 // long shadow vs body
)

// Detect evaluates every pattern for every bar of a chronological sequence.
// Bars too early for a multi-bar pattern are simply false, never undefined.
func Detect(bars []model.PriceBar) []model.PatternFlags {
	out := make([]model.PatternFlags, len(bars))
	for i := range bars {
		f := model.PatternFlags{}
		f[Doji] = isDoji(bars[i])
		f[Hammer], f[HangingMan] = hammerShapes(bars[i])

		eng := 0.0
		if i >= 1 {
			eng = engulfing(bars[i-1], bars[i])
		}
		f[BullishEngulfing] = eng > 0
		f[BearishEngulfing] = eng < 0

		f[MorningStar] = i >= 2 && isMorningStar(bars[i-2], bars[i-1], bars[i])
		f[EveningStar] = i >= 2 && isEveningStar(bars[i-2], bars[i-1], bars[i])
		out[i] = f
	}
	return out
}

func body(b model.PriceBar) float64        { return math.Abs(b.Close - b.Open) }
func barRange(b model.PriceBar) float64    { return b.High - b.Low }
func upperShadow(b model.PriceBar) float64 { return b.High - math.Max(b.Open, b.Close) }
func lowerShadow(b model.PriceBar) float64 { return math.Min(b.Open, b.Close) - b.Low }
func bullish(b model.PriceBar) bool        { return b.Close > b.Open }
func bearish(b model.PriceBar) bool        { return b.Close < b.Open }

// isDoji: open and close nearly coincide relative to the bar's range.
// A zero-range bar with equal open and close still counts.
func isDoji(b model.PriceBar) bool {
	return body(b) <= dojiBodyMax*barRange(b)
}

// hammerShapes matches a small body near the top of the range with a long
// lower shadow and a stub upper shadow. Body direction splits the shape into
// Hammer (bullish) and HangingMan (bearish).
func hammerShapes(b model.PriceBar) (hammer, hangingMan bool) {
	rng := barRange(b)
	if rng == 0 {
		return false, false
	}
	shaped := body(b) > 0 &&
		lowerShadow(b) >= shadowBodyMult*body(b) &&
		upperShadow(b) <= smallShadowMax*rng
	return shaped && bullish(b), shaped && bearish(b)
}

// engulfing returns a signed measure of body engulfment: positive when the
// current bullish body fully contains the previous bearish body, negative in
// the mirror case, zero otherwise. The magnitude is the current body size.
func engulfing(prev, cur model.PriceBar) float64 {
	switch {
	case bullish(cur) && bearish(prev) &&
		cur.Open <= prev.Close && cur.Close >= prev.Open:
		return body(cur)
	case bearish(cur) && bullish(prev) &&
		cur.Open >= prev.Close && cur.Close <= prev.Open:
		return -body(cur)
	}
	return 0
}

// isMorningStar: large bearish body, a small body gapping below it, then a
// large bullish body closing above the midpoint of the first.
func isMorningStar(a, b, c model.PriceBar) bool {
	return bearish(a) && body(a) > 0 &&
		body(b) <= starBodyMax*body(a) &&
		math.Max(b.Open, b.Close) < a.Close &&
		bullish(c) &&
		c.Close > (a.Open+a.Close)/2
}

// isEveningStar is the mirror of isMorningStar.
func isEveningStar(a, b, c model.PriceBar) bool {
	return bullish(a) && body(a) > 0 &&
		body(b) <= starBodyMax*body(a) &&
		math.Min(b.Open, b.Close) > a.Close &&
		bearish(c) &&
		c.Close < (a.Open+a.Close)/2
}
