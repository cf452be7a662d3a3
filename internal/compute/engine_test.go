package compute

import (
	"bytes"
	"math"
	"testing"
	"time"

	"stocklens/internal/model"
	"stocklens/internal/pattern"
	"stocklens/internal/table"
)

func dailyBars(ticker string, n int, base float64) []model.PriceBar {
	out := make([]model.PriceBar, n)
	d := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := base + 3*math.Sin(float64(i)/2)
		out[i] = model.PriceBar{
			Ticker: ticker,
			Date:   d.AddDate(0, 0, i),
			Open:   c - 0.3,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + int64(10*i),
		}
	}
	return out
}

func TestSnapshot_WarmupProfile(t *testing.T) {
	eng := NewEngine(DefaultParams(), nil)
	tbl := table.New(dailyBars("AAPL", 20, 100))

	snap := eng.Snapshot(tbl)
	ts, ok := snap.Tickers["AAPL"]
	if !ok {
		t.Fatal("no snapshot for AAPL")
	}

	// With defaults over 20 bars: RSI is defined everywhere, %K has a
	// 13-bar warm-up, %D a 15-bar one, MFI a 13-bar one, and the seeded
	// MACD pair has none.
	for i := 0; i < 20; i++ {
		if math.IsNaN(ts.RSI[i]) {
			t.Errorf("rsi[%d] undefined", i)
		}
		if math.IsNaN(ts.MACD[i]) || math.IsNaN(ts.Signal[i]) {
			t.Errorf("macd/signal[%d] undefined", i)
		}
		if wantNaN := i < 13; math.IsNaN(ts.PercentK[i]) != wantNaN {
			t.Errorf("percent_k[%d]: defined=%v", i, !math.IsNaN(ts.PercentK[i]))
		}
		if wantNaN := i < 15; math.IsNaN(ts.PercentD[i]) != wantNaN {
			t.Errorf("percent_d[%d]: defined=%v", i, !math.IsNaN(ts.PercentD[i]))
		}
		if wantNaN := i < 13; math.IsNaN(ts.MFI[i]) != wantNaN {
			t.Errorf("mfi[%d]: defined=%v", i, !math.IsNaN(ts.MFI[i]))
		}
	}

	if len(ts.Patterns) != 20 {
		t.Errorf("patterns length %d, want 20", len(ts.Patterns))
	}
	for _, name := range pattern.Names {
		if _, ok := ts.Patterns[0][name]; !ok {
			t.Errorf("pattern %q missing from flags", name)
		}
	}
	if len(ts.CAGR) == 0 {
		t.Error("no CAGR entries")
	}
	if len(ts.Volatility) == 0 {
		t.Error("no volatility samples")
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	// Concurrent fan-out must not change results. NaN breaks DeepEqual,
	// so compare the JSON encodings, where NaN is null.
	eng := NewEngine(DefaultParams(), nil)
	tbl := table.New(dailyBars("AAPL", 30, 100))

	a := eng.Snapshot(tbl).Tickers["AAPL"]
	b := eng.Snapshot(tbl).Tickers["AAPL"]

	aj, err := a.JSON()
	if err != nil {
		t.Fatalf("encode a: %v", err)
	}
	bj, err := b.JSON()
	if err != nil {
		t.Fatalf("encode b: %v", err)
	}
	if !bytes.Equal(aj, bj) {
		t.Error("repeated snapshots differ")
	}
}

func TestSnapshot_TickersIndependent(t *testing.T) {
	eng := NewEngine(DefaultParams(), nil)

	solo := table.New(dailyBars("AAPL", 25, 100))
	mixed := table.New(append(dailyBars("AAPL", 25, 100), dailyBars("MSFT", 25, 300)...))

	sj, err := eng.Snapshot(solo).Tickers["AAPL"].JSON()
	if err != nil {
		t.Fatal(err)
	}
	mixedSnap := eng.Snapshot(mixed)
	mj, err := mixedSnap.Tickers["AAPL"].JSON()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sj, mj) {
		t.Error("adding another ticker changed AAPL's snapshot")
	}
	if _, ok := mixedSnap.Tickers["MSFT"]; !ok {
		t.Error("MSFT missing from snapshot")
	}
}

func TestSnapshot_UnknownTickerBucket(t *testing.T) {
	bars := dailyBars("", 16, 50)
	snap := NewEngine(DefaultParams(), nil).Snapshot(table.New(bars))
	if _, ok := snap.Tickers[model.UnknownTicker]; !ok {
		t.Fatalf("unlabeled bars not bucketed under %q", model.UnknownTicker)
	}
}

func TestColumns_RowAlignment(t *testing.T) {
	// Interleave two tickers so group positions differ from row positions,
	// then check the scattered columns against per-ticker snapshots.
	aBars := dailyBars("A", 20, 100)
	bBars := dailyBars("B", 20, 300)
	rows := make([]model.PriceBar, 0, 40)
	for i := 0; i < 20; i++ {
		rows = append(rows, aBars[i], bBars[i])
	}
	tbl := table.New(rows)
	eng := NewEngine(DefaultParams(), nil)

	cols, err := eng.Columns(tbl)
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	snap := eng.Snapshot(tbl)

	sameFloat := func(a, b float64) bool {
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	}
	for ri, row := range tbl.Rows() {
		ts := snap.Tickers[row.Ticker]
		gi := ri / 2 // interleaved layout: group position is row/2
		if !sameFloat(cols.RSI[ri], ts.RSI[gi]) {
			t.Errorf("row %d: rsi=%v, want %v", ri, cols.RSI[ri], ts.RSI[gi])
		}
		if !sameFloat(cols.MFI[ri], ts.MFI[gi]) {
			t.Errorf("row %d: mfi=%v, want %v", ri, cols.MFI[ri], ts.MFI[gi])
		}
		if !sameFloat(cols.PercentK[ri], ts.PercentK[gi]) {
			t.Errorf("row %d: percent_k=%v, want %v", ri, cols.PercentK[ri], ts.PercentK[gi])
		}
		if cols.Status[ri] != ts.Status[gi] {
			t.Errorf("row %d: status=%s, want %s", ri, cols.Status[ri], ts.Status[gi])
		}
		if cols.BullDiv[ri] != ts.BullDiv[gi] || cols.BearDiv[ri] != ts.BearDiv[gi] {
			t.Errorf("row %d: divergence flags misaligned", ri)
		}
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.RSIPeriod != 14 || p.StochPeriod != 14 || p.StochSmooth != 3 ||
		p.MFIPeriod != 14 || p.MACDFast != 12 || p.MACDSlow != 26 ||
		p.MACDSignal != 9 || p.DivWindow != 14 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
