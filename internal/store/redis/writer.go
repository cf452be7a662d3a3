// Package redis caches computed ticker snapshots and carries the refresh
// notification channel between the ingestion service and the gateway.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"stocklens/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	snapshotKeyPrefix  = "stocklens:snapshot:"
	refreshChannel     = "stocklens:refresh"
	defaultSnapshotTTL = 30 * time.Minute
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int

	SnapshotTTL time.Duration // 0 means defaultSnapshotTTL
}

// Writer caches snapshots and publishes refresh notifications.
type Writer struct {
	client *goredis.Client
	ttl    time.Duration
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.SnapshotTTL
	if ttl == 0 {
		ttl = defaultSnapshotTTL
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client, ttl: ttl}, nil
}

// SetSnapshot caches one ticker's snapshot JSON with the configured TTL.
func (w *Writer) SetSnapshot(ctx context.Context, ts *model.TickerSnapshot) error {
	data, err := ts.JSON()
	if err != nil {
		return err
	}
	key := snapshotKeyPrefix + ts.Ticker
	if err := w.client.Set(ctx, key, data, w.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DropSnapshots removes the cached snapshots for the given tickers.
func (w *Writer) DropSnapshots(ctx context.Context, tickers []string) error {
	if len(tickers) == 0 {
		return nil
	}
	keys := make([]string, len(tickers))
	for i, tk := range tickers {
		keys[i] = snapshotKeyPrefix + tk
	}
	return w.client.Del(ctx, keys...).Err()
}

// PublishRefresh notifies subscribers that the bar store changed for the
// given tickers.
func (w *Writer) PublishRefresh(ctx context.Context, tickers []string) error {
	msg := RefreshMessage{Tickers: tickers, At: time.Now().UTC()}
	data, err := msg.JSON()
	if err != nil {
		return err
	}
	return w.client.Publish(ctx, refreshChannel, data).Err()
}

// Close closes the client.
func (w *Writer) Close() error { return w.client.Close() }
