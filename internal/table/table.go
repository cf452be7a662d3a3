// Package table holds the in-memory price table shared by every indicator
// component: an ordered collection of daily OHLCV bars, grouped per ticker
// and sorted chronologically on construction.
//
// Input rows are not assumed pre-sorted. Row order of the original input is
// retained so per-ticker computations can be scattered back into row-aligned
// output columns.
package table

import (
	"errors"
	"fmt"
	"sort"

	"stocklens/internal/model"
)

// ErrMissingColumn reports a required input column that is absent.
// The call fails immediately with no partial output.
var ErrMissingColumn = errors.New("missing column")

// Table is an immutable price table: all input rows plus per-ticker
// chronological views over them.
type Table struct {
	rows    []model.PriceBar
	tickers []string         // sorted
	groups  map[string][]int // ticker → original row indexes, chronological
}

// New builds a table from unsorted rows. Rows without a ticker are bucketed
// under model.UnknownTicker. The input slice is not retained or mutated.
func New(rows []model.PriceBar) *Table {
	t := &Table{
		rows:   make([]model.PriceBar, len(rows)),
		groups: make(map[string][]int),
	}
	copy(t.rows, rows)

	for i := range t.rows {
		if t.rows[i].Ticker == "" {
			t.rows[i].Ticker = model.UnknownTicker
		}
		tk := t.rows[i].Ticker
		t.groups[tk] = append(t.groups[tk], i)
	}

	for tk, idx := range t.groups {
		rowsRef := t.rows
		sort.SliceStable(idx, func(a, b int) bool {
			return rowsRef[idx[a]].Date.Before(rowsRef[idx[b]].Date)
		})
		t.tickers = append(t.tickers, tk)
	}
	sort.Strings(t.tickers)
	return t
}

// Len returns the number of rows in the table.
func (t *Table) Len() int { return len(t.rows) }

// Tickers returns all ticker symbols, sorted.
func (t *Table) Tickers() []string { return t.tickers }

// Rows returns the table rows in original input order.
func (t *Table) Rows() []model.PriceBar { return t.rows }

// Group returns the bars of one ticker in chronological order.
func (t *Table) Group(ticker string) []model.PriceBar {
	idx := t.groups[ticker]
	bars := make([]model.PriceBar, len(idx))
	for i, ri := range idx {
		bars[i] = t.rows[ri]
	}
	return bars
}

// GroupIndexes returns the original row positions of one ticker's bars in
// chronological order. Used to scatter per-ticker results back into
// row-aligned output columns.
func (t *Table) GroupIndexes(ticker string) []int {
	return t.groups[ticker]
}

// Column names accepted by RequireColumns.
const (
	ColClose  = "Close"
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColVolume = "Volume"
	ColMFI    = "MFI"
)

// RequireColumns validates that every named derived column is present
// (non-nil and row-aligned). Bar-intrinsic columns always pass; derived
// columns such as MFI must be supplied by the caller.
func RequireColumns(n int, derived map[string]model.Series, names ...string) error {
	for _, name := range names {
		switch name {
		case ColClose, ColOpen, ColHigh, ColLow, ColVolume:
			continue
		}
		col, ok := derived[name]
		if !ok || col == nil {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		if len(col) != n {
			return fmt.Errorf("%w: %s has %d rows, want %d", ErrMissingColumn, name, len(col), n)
		}
	}
	return nil
}

// Closes extracts the close column from a bar sequence.
func Closes(bars []model.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Opens extracts the open column from a bar sequence.
func Opens(bars []model.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Open
	}
	return out
}

// Highs extracts the high column from a bar sequence.
func Highs(bars []model.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column from a bar sequence.
func Lows(bars []model.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume column from a bar sequence.
func Volumes(bars []model.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}
