package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocklens/config"
	"stocklens/internal/compute"
	"stocklens/internal/gateway"
	"stocklens/internal/logger"
	"stocklens/internal/metrics"
	redisstore "stocklens/internal/store/redis"
	sqlitestore "stocklens/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	slogger := logger.Init("metricsd", logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg := config.Load()

	wl, err := config.LoadWatchlist(cfg.WatchlistPath)
	if err != nil {
		log.Fatalf("[metricsd] watchlist: %v", err)
	}
	params := wl.ComputeParams()
	slogger.Info("starting", slog.Int("tickers", len(wl.Tickers)), slog.Any("params", params))

	prom := metrics.NewMetrics()
	engine := compute.NewEngine(params, prom)

	barReader, err := sqlitestore.NewReader(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[metricsd] sqlite: %v", err)
	}
	defer barReader.Close()

	cacheReader, err := redisstore.NewReader(redisstore.ReaderConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("[metricsd] redis reader: %v", err)
	}
	defer cacheReader.Close()

	cacheWriter, err := redisstore.New(redisstore.WriterConfig{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		SnapshotTTL: cfg.SnapshotTTL,
	})
	if err != nil {
		log.Fatalf("[metricsd] redis writer: %v", err)
	}
	defer cacheWriter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	health := metrics.NewHealthStatus()
	health.StartLivenessChecker(ctx, cacheWriter.Client(), barReader.DB(), 15*time.Second)

	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()
	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
		metricsSrv.Stop(stopCtx)
		stop()
	}()

	srv := gateway.NewServer(gateway.Config{
		HTTPAddr:   cfg.HTTPAddr,
		TOTPSecret: cfg.RefreshTOTPSecret,
	}, engine, barReader, cacheReader, cacheWriter, prom, health)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("[metricsd] fatal: %v", err)
	}
}
