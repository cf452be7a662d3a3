package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeWatchlist(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("SNAPSHOT_TTL", "5m")
	t.Setenv("LOOKBACK_YEARS", "2")

	cfg := Load()
	if cfg.RedisAddr != "redis:6380" {
		t.Errorf("RedisAddr=%s", cfg.RedisAddr)
	}
	if cfg.SnapshotTTL != 5*time.Minute {
		t.Errorf("SnapshotTTL=%s", cfg.SnapshotTTL)
	}
	if cfg.LookbackYears != 2 {
		t.Errorf("LookbackYears=%d", cfg.LookbackYears)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr default=%s", cfg.HTTPAddr)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("LOOKBACK_YEARS", "five")
	t.Setenv("SNAPSHOT_TTL", "soon")

	cfg := Load()
	if cfg.LookbackYears != 5 {
		t.Errorf("LookbackYears=%d, want default 5", cfg.LookbackYears)
	}
	if cfg.SnapshotTTL != 30*time.Minute {
		t.Errorf("SnapshotTTL=%s, want default 30m", cfg.SnapshotTTL)
	}
}

func TestLoadWatchlist(t *testing.T) {
	path := writeWatchlist(t, `
tickers: [AAPL, AMZN, GOOG, MSFT]
params:
  rsi_period: 10
  macd_fast: 8
`)
	wl, err := LoadWatchlist(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(wl.Tickers) != 4 || wl.Tickers[0] != "AAPL" {
		t.Errorf("tickers=%v", wl.Tickers)
	}

	p := wl.ComputeParams()
	if p.RSIPeriod != 10 {
		t.Errorf("RSIPeriod=%d, want override 10", p.RSIPeriod)
	}
	if p.MACDFast != 8 {
		t.Errorf("MACDFast=%d, want override 8", p.MACDFast)
	}
	// Untouched fields keep the conventional defaults.
	if p.MACDSlow != 26 || p.StochPeriod != 14 || p.DivWindow != 14 {
		t.Errorf("defaults not preserved: %+v", p)
	}
}

func TestLoadWatchlist_NoParamsSection(t *testing.T) {
	path := writeWatchlist(t, "tickers: [MSFT]\n")
	wl, err := LoadWatchlist(path)
	if err != nil {
		t.Fatal(err)
	}
	p := wl.ComputeParams()
	if p.RSIPeriod != 14 {
		t.Errorf("RSIPeriod=%d, want 14", p.RSIPeriod)
	}
}

func TestLoadWatchlist_Errors(t *testing.T) {
	if _, err := LoadWatchlist(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadWatchlist(writeWatchlist(t, "tickers: []\n")); err == nil {
		t.Error("expected error for empty ticker list")
	}
	if _, err := LoadWatchlist(writeWatchlist(t, ": not yaml : [\n")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
