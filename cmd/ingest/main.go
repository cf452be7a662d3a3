package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stocklens/config"
	"stocklens/internal/ingest"
	"stocklens/internal/logger"
	"stocklens/internal/metrics"
	redisstore "stocklens/internal/store/redis"
	sqlitestore "stocklens/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	slogger := logger.Init("ingest", logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg := config.Load()

	wl, err := config.LoadWatchlist(cfg.WatchlistPath)
	if err != nil {
		log.Fatalf("[ingest] watchlist: %v", err)
	}
	slogger.Info("starting", slog.Any("tickers", wl.Tickers), slog.String("cron", cfg.IngestCron))

	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	barWriter, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[ingest] sqlite: %v", err)
	}
	defer barWriter.Close()

	// Redis is optional for one-shot backfills; the gateway just won't be
	// notified.
	var cacheWriter *redisstore.Writer
	cacheWriter, err = redisstore.New(redisstore.WriterConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[ingest] WARNING: redis unavailable, refresh notifications disabled: %v", err)
		cacheWriter = nil
	} else {
		defer cacheWriter.Close()
	}

	prom := metrics.NewMetrics()

	svc := ingest.New(ingest.Config{
		Watchlist: wl.Tickers,
		Lookback:  time.Duration(cfg.LookbackYears) * 365 * 24 * time.Hour,
	}, ingest.NewYahooFetcher(), barWriter, cacheWriter, prom)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.IngestCron == "" {
		if err := svc.RunOnce(ctx); err != nil {
			log.Fatalf("[ingest] fatal: %v", err)
		}
		return
	}

	metricsSrv := metrics.NewServer(cfg.MetricsAddr, metrics.NewHealthStatus())
	metricsSrv.Start()
	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
		metricsSrv.Stop(stopCtx)
		stop()
	}()

	if err := svc.Schedule(ctx, cfg.IngestCron); err != nil {
		log.Fatalf("[ingest] fatal: %v", err)
	}
}
