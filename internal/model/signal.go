package model

import "time"

// StochStatus classifies a stochastic %K reading.
type StochStatus string

const (
	StatusOverbought StochStatus = "Overbought"
	StatusOversold   StochStatus = "Oversold"
	StatusNeutral    StochStatus = "Neutral"
)

// DivergenceKind distinguishes bullish from bearish price/indicator
// divergence.
type DivergenceKind string

const (
	Bullish DivergenceKind = "Bullish"
	Bearish DivergenceKind = "Bearish"
)

// DivergenceEvent flags one bar where price and the money-flow index
// disagree at a rolling extremum.
type DivergenceEvent struct {
	Date           time.Time      `json:"date"`
	Kind           DivergenceKind `json:"kind"`
	Price          float64        `json:"price"`
	IndicatorValue Float          `json:"indicator_value"`
}

// PatternFlags maps candlestick pattern names to per-bar hits.
// Absence of a pattern is false, never undefined.
type PatternFlags map[string]bool

// VolatilitySample is the historical volatility of one ticker over one
// calendar month. Volatility is NaN when the month holds fewer than two
// log returns.
type VolatilitySample struct {
	Ticker     string `json:"ticker"`
	YearMonth  string `json:"year_month"` // "YYYY-MM"
	Volatility Float  `json:"volatility"`
}

// CAGRByYear maps calendar year to compound annual growth rate.
// NaN marks years where CAGR is undefined (fewer than two bars, or a
// non-positive basis).
type CAGRByYear map[int]Float
