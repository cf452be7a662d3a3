// Package config loads service configuration from environment variables
// (with .env autoload) and the YAML watchlist file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stocklens/internal/compute"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	HTTPAddr      string

	// Gateway
	RefreshTOTPSecret string // empty disables POST /api/v1/refresh
	SnapshotTTL       time.Duration

	// Ingestion
	WatchlistPath string
	IngestCron    string // empty means run once and exit
	LookbackYears int
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	// Missing .env is the normal production case.
	godotenv.Load()

	return &Config{
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/bars.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),

		RefreshTOTPSecret: getEnv("REFRESH_TOTP_SECRET", ""),
		SnapshotTTL:       getDuration("SNAPSHOT_TTL", 30*time.Minute),

		WatchlistPath: getEnv("WATCHLIST_PATH", "watchlist.yaml"),
		IngestCron:    getEnv("INGEST_CRON", ""),
		LookbackYears: getInt("LOOKBACK_YEARS", 5),
	}
}

// Watchlist is the YAML-configured ticker set plus optional indicator
// parameter overrides.
type Watchlist struct {
	Tickers []string        `yaml:"tickers"`
	Params  *compute.Params `yaml:"params"`
}

// LoadWatchlist parses the watchlist file. Parameter fields left at zero
// fall back to the conventional defaults.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("watchlist read: %w", err)
	}
	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("watchlist parse: %w", err)
	}
	if len(wl.Tickers) == 0 {
		return nil, fmt.Errorf("watchlist %s: no tickers", path)
	}
	return &wl, nil
}

// ComputeParams merges the watchlist overrides onto the defaults.
func (wl *Watchlist) ComputeParams() compute.Params {
	p := compute.DefaultParams()
	if wl.Params == nil {
		return p
	}
	o := wl.Params
	if o.RSIPeriod > 0 {
		p.RSIPeriod = o.RSIPeriod
	}
	if o.StochPeriod > 0 {
		p.StochPeriod = o.StochPeriod
	}
	if o.StochSmooth > 0 {
		p.StochSmooth = o.StochSmooth
	}
	if o.MFIPeriod > 0 {
		p.MFIPeriod = o.MFIPeriod
	}
	if o.MACDFast > 0 {
		p.MACDFast = o.MACDFast
	}
	if o.MACDSlow > 0 {
		p.MACDSlow = o.MACDSlow
	}
	if o.MACDSignal > 0 {
		p.MACDSignal = o.MACDSignal
	}
	if o.DivWindow > 0 {
		p.DivWindow = o.DivWindow
	}
	return p
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
