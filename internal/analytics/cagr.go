// Package analytics computes growth and volatility metrics from grouped
// daily bars: per-ticker annual CAGR and per-ticker monthly historical
// volatility. Like the indicator transforms, everything here is a pure
// function of its input.
package analytics

import (
	"math"

	"stocklens/internal/model"
	"stocklens/internal/table"
)

const daysPerYear = 365.25

// AnnualCAGR computes the compound annual growth rate per ticker per
// calendar year.
//
// A year with fewer than two bars, a non-positive opening close, or a zero
// date span yields NaN for that year. The growth exponent uses the actual
// day span of the year's bars divided by 365.25, not a flat 1.0.
func AnnualCAGR(t *table.Table) map[string]model.CAGRByYear {
	out := make(map[string]model.CAGRByYear, len(t.Tickers()))
	for _, ticker := range t.Tickers() {
		bars := t.Group(ticker)
		byYear := model.CAGRByYear{}

		for lo := 0; lo < len(bars); {
			hi := lo
			for hi+1 < len(bars) && bars[hi+1].Year() == bars[lo].Year() {
				hi++
			}
			byYear[bars[lo].Year()] = model.Float(yearCAGR(bars[lo : hi+1]))
			lo = hi + 1
		}
		out[ticker] = byYear
	}
	return out
}

func yearCAGR(bars []model.PriceBar) float64 {
	if len(bars) < 2 {
		return math.NaN()
	}
	first, last := bars[0], bars[len(bars)-1]
	deltaYears := last.Date.Sub(first.Date).Hours() / 24 / daysPerYear
	if deltaYears <= 0 || first.Close <= 0 {
		return math.NaN()
	}
	return math.Pow(last.Close/first.Close, 1/deltaYears) - 1
}
