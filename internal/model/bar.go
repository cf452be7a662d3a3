// Package model defines the data carriers shared by the indicator core and
// its collaborators: daily OHLCV bars, derived series, and signal records.
package model

import "time"

// UnknownTicker labels bars that arrive without a ticker symbol.
// Bucketing under it is a documented fallback, not an error.
const UnknownTicker = "Unknown"

// PriceBar is one daily OHLCV bar for a single ticker.
// Immutable once produced by ingestion.
type PriceBar struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"` // calendar date (UTC, midnight-aligned)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Year returns the calendar year of the bar.
func (b PriceBar) Year() int { return b.Date.Year() }

// YearMonth returns the bar's calendar month as "YYYY-MM".
func (b PriceBar) YearMonth() string { return b.Date.Format("2006-01") }
