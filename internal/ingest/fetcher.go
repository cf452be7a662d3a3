// Package ingest pulls daily bars from Yahoo Finance for a watchlist and
// feeds the bar store, notifying consumers over Redis when new data lands.
package ingest

import (
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"stocklens/internal/model"
)

// BarSource yields daily bars for one ticker over a date range.
type BarSource interface {
	DailyBars(ticker string, start, end time.Time) ([]model.PriceBar, error)
}

// YahooFetcher fetches daily OHLCV history from the Yahoo Finance chart
// API.
type YahooFetcher struct{}

// NewYahooFetcher returns a Yahoo Finance bar source.
func NewYahooFetcher() *YahooFetcher { return &YahooFetcher{} }

// DailyBars downloads one ticker's daily bars for [start, end].
func (f *YahooFetcher) DailyBars(ticker string, start, end time.Time) ([]model.PriceBar, error) {
	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	var bars []model.PriceBar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, model.PriceBar{
			Ticker: ticker,
			Date:   time.Unix(int64(b.Timestamp), 0).UTC().Truncate(24 * time.Hour),
			Open:   toFloat(b.Open),
			High:   toFloat(b.High),
			Low:    toFloat(b.Low),
			Close:  toFloat(b.Close),
			Volume: int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	return bars, nil
}

// toFloat converts the provider's decimal prices to the core's float64
// representation.
func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
