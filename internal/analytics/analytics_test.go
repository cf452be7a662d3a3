package analytics

import (
	"math"
	"testing"
	"time"

	"stocklens/internal/model"
	"stocklens/internal/table"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, got, want, tol)
	}
}

func bar(ticker string, date time.Time, close float64) model.PriceBar {
	return model.PriceBar{
		Ticker: ticker,
		Date:   date,
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
		Volume: 1000,
	}
}

func TestAnnualCAGR_ExactOneYearSpan(t *testing.T) {
	// 365.25 days between the bars makes the growth exponent exactly 1,
	// so 100 → 121 must come out as 0.21.
	d0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := d0.Add(time.Duration(365.25 * 24 * float64(time.Hour)))
	tbl := table.New([]model.PriceBar{
		bar("AAPL", d0, 100),
		bar("AAPL", d1, 121),
	})

	got := AnnualCAGR(tbl)
	cagr, ok := got["AAPL"][2020]
	if !ok {
		t.Fatal("no CAGR entry for AAPL 2020")
	}
	assertClose(t, "cagr", float64(cagr), 0.21, 1e-9)
}

func TestAnnualCAGR_PartialYearAnnualizes(t *testing.T) {
	// Half a year of 10% growth annualizes to (1.1)^2 - 1 = 21%.
	d0 := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	d1 := d0.Add(time.Duration(365.25 / 2 * 24 * float64(time.Hour)))
	tbl := table.New([]model.PriceBar{
		bar("MSFT", d0, 200),
		bar("MSFT", d1, 220),
	})

	cagr := float64(AnnualCAGR(tbl)["MSFT"][2021])
	assertClose(t, "annualized cagr", cagr, 0.21, 1e-9)
}

func TestAnnualCAGR_UndefinedCases(t *testing.T) {
	d0 := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]model.PriceBar{
		// Single bar in 2022.
		bar("ONE", d0, 100),
		// Two bars on the same date in 2023: zero span.
		bar("SAME", d0.AddDate(1, 0, 0), 100),
		bar("SAME", d0.AddDate(1, 0, 0), 110),
		// Non-positive opening close.
		bar("NEG", d0, -5),
		bar("NEG", d0.AddDate(0, 1, 0), 10),
	})

	got := AnnualCAGR(tbl)
	for _, tc := range []struct {
		ticker string
		year   int
	}{
		{"ONE", 2022},
		{"SAME", 2023},
		{"NEG", 2022},
	} {
		v, ok := got[tc.ticker][tc.year]
		if !ok {
			t.Fatalf("%s %d: entry missing, want NaN entry", tc.ticker, tc.year)
		}
		if !math.IsNaN(float64(v)) {
			t.Errorf("%s %d: got %.4f, want NaN", tc.ticker, tc.year, float64(v))
		}
	}
}

func TestAnnualCAGR_SplitsByCalendarYear(t *testing.T) {
	tbl := table.New([]model.PriceBar{
		bar("GOOG", time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC), 100),
		bar("GOOG", time.Date(2022, 11, 10, 0, 0, 0, 0, time.UTC), 110),
		bar("GOOG", time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), 105),
		bar("GOOG", time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC), 130),
	})
	got := AnnualCAGR(tbl)["GOOG"]
	if len(got) != 2 {
		t.Fatalf("expected 2 year entries, got %d", len(got))
	}
	if _, ok := got[2022]; !ok {
		t.Error("missing 2022 entry")
	}
	if _, ok := got[2023]; !ok {
		t.Error("missing 2023 entry")
	}
}

func TestMonthlyVolatility_ConstantCloseIsZero(t *testing.T) {
	d := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]model.PriceBar{
		bar("AMZN", d, 50),
		bar("AMZN", d.AddDate(0, 0, 1), 50),
		bar("AMZN", d.AddDate(0, 0, 2), 50),
	})

	got := MonthlyVolatility(tbl)
	if len(got) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(got))
	}
	if got[0].YearMonth != "2023-05" {
		t.Errorf("YearMonth=%s, want 2023-05", got[0].YearMonth)
	}
	assertClose(t, "volatility", float64(got[0].Volatility), 0, 1e-12)
}

func TestMonthlyVolatility_FirstBarCarriesNoReturn(t *testing.T) {
	// Ticker starts with two bars in April and one in May. April holds a
	// single return, May holds one return crossing the month boundary.
	d := time.Date(2023, 4, 27, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]model.PriceBar{
		bar("TSLA", d, 100),
		bar("TSLA", d.AddDate(0, 0, 1), 102),
		bar("TSLA", d.AddDate(0, 0, 5), 104),
	})

	got := MonthlyVolatility(tbl)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	// One defined return per month: the sample stddev is undefined.
	for _, s := range got {
		if !math.IsNaN(float64(s.Volatility)) {
			t.Errorf("%s: got %.6f, want NaN for a single-return month", s.YearMonth, float64(s.Volatility))
		}
	}
}

func TestMonthlyVolatility_HandComputed(t *testing.T) {
	// Returns within June: ln(110/100) and ln(121/110) after the opening
	// bar. Sample stddev of {ln 1.1, ln 1.1} is 0; tilt the last bar to get
	// a non-degenerate value.
	d := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]model.PriceBar{
		bar("NVDA", d, 100),
		bar("NVDA", d.AddDate(0, 0, 1), 110),
		bar("NVDA", d.AddDate(0, 0, 2), 132),
	})

	r1 := math.Log(110.0 / 100.0)
	r2 := math.Log(132.0 / 110.0)
	mean := (r1 + r2) / 2
	want := math.Sqrt((r1-mean)*(r1-mean) + (r2-mean)*(r2-mean)) // n-1 == 1

	got := MonthlyVolatility(tbl)
	if len(got) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(got))
	}
	assertClose(t, "volatility", float64(got[0].Volatility), want, 1e-12)
}

func TestMonthlyVolatility_GroupsPerTicker(t *testing.T) {
	// Interleaved tickers must not leak returns into each other.
	d := time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]model.PriceBar{
		bar("A", d, 10),
		bar("B", d, 500),
		bar("A", d.AddDate(0, 0, 1), 10),
		bar("B", d.AddDate(0, 0, 1), 500),
		bar("A", d.AddDate(0, 0, 2), 10),
		bar("B", d.AddDate(0, 0, 2), 500),
	})

	got := MonthlyVolatility(tbl)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	for _, s := range got {
		assertClose(t, s.Ticker+" volatility", float64(s.Volatility), 0, 1e-12)
	}
}
