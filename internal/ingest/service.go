package ingest

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"stocklens/internal/metrics"
	"stocklens/internal/model"
	redisstore "stocklens/internal/store/redis"
	sqlitestore "stocklens/internal/store/sqlite"
)

const (
	// First run pulls roughly five years of history, matching what the
	// dashboard charts cover.
	defaultLookback = 5 * 365 * 24 * time.Hour

	// Incremental runs re-fetch a few days of overlap so late provider
	// corrections are picked up by the upsert.
	refetchOverlap = 3 * 24 * time.Hour
)

// Config configures the ingestion service.
type Config struct {
	Watchlist []string
	Lookback  time.Duration // 0 means defaultLookback
}

// Service fetches bars for the watchlist, upserts them into SQLite, and
// publishes a refresh notification.
type Service struct {
	cfg  Config
	src  BarSource
	sql  *sqlitestore.Writer
	rdb  *redisstore.Writer // nil disables notification
	prom *metrics.Metrics   // nil disables instrumentation
}

// New creates an ingestion service. rdb and prom may be nil.
func New(cfg Config, src BarSource, sql *sqlitestore.Writer, rdb *redisstore.Writer, prom *metrics.Metrics) *Service {
	if cfg.Lookback == 0 {
		cfg.Lookback = defaultLookback
	}
	return &Service{cfg: cfg, src: src, sql: sql, rdb: rdb, prom: prom}
}

// RunOnce fetches and stores bars for every watchlist ticker. Per-ticker
// failures are logged and counted but do not abort the rest of the
// watchlist. Tickers that received new bars are announced over Redis.
func (s *Service) RunOnce(ctx context.Context) error {
	now := time.Now().UTC()
	var updated []string

	for _, ticker := range s.cfg.Watchlist {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		start := now.Add(-s.cfg.Lookback)
		last, err := s.sql.LastDate(ctx, ticker)
		if err != nil {
			log.Printf("[ingest] last date %s: %v", ticker, err)
		} else if !last.IsZero() {
			start = last.Add(-refetchOverlap)
		}

		fetchStart := time.Now()
		bars, err := s.src.DailyBars(ticker, start, now)
		if s.prom != nil {
			s.prom.FetchDur.Observe(time.Since(fetchStart).Seconds())
		}
		if err != nil {
			log.Printf("[ingest] fetch %s: %v", ticker, err)
			if s.prom != nil {
				s.prom.IngestErrors.Inc()
			}
			continue
		}
		if len(bars) == 0 {
			continue
		}

		n, err := s.sql.UpsertBars(ctx, bars)
		if err != nil {
			log.Printf("[ingest] upsert %s: %v", ticker, err)
			if s.prom != nil {
				s.prom.IngestErrors.Inc()
			}
			continue
		}
		if s.prom != nil {
			s.prom.BarsIngested.Add(float64(n))
		}
		log.Printf("[ingest] %s: %d bars upserted (since %s)", ticker, n, start.Format("2006-01-02"))
		updated = append(updated, labelOf(ticker))
	}

	if len(updated) > 0 && s.rdb != nil {
		if err := s.rdb.DropSnapshots(ctx, updated); err != nil {
			log.Printf("[ingest] drop snapshots: %v", err)
		}
		if err := s.rdb.PublishRefresh(ctx, updated); err != nil {
			log.Printf("[ingest] publish refresh: %v", err)
		}
	}
	return nil
}

// Schedule runs RunOnce on the given cron spec until ctx is done. The first
// run fires immediately.
func (s *Service) Schedule(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("[ingest] scheduled run: %v", err)
		}
	})
	if err != nil {
		return err
	}

	if err := s.RunOnce(ctx); err != nil {
		log.Printf("[ingest] initial run: %v", err)
	}

	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// labelOf maps an empty ticker symbol to the documented fallback label.
func labelOf(ticker string) string {
	if ticker == "" {
		return model.UnknownTicker
	}
	return ticker
}
