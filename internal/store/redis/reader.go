package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"stocklens/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// RefreshMessage travels over the refresh pubsub channel when the bar store
// changes.
type RefreshMessage struct {
	Tickers []string  `json:"tickers"`
	At      time.Time `json:"at"`
}

// JSON encodes the message.
func (m RefreshMessage) JSON() ([]byte, error) { return json.Marshal(m) }

// ReaderConfig configures the Redis reader.
type ReaderConfig struct {
	Addr     string
	Password string
	DB       int
}

// Reader fetches cached snapshots and subscribes to refresh notifications.
type Reader struct {
	client *goredis.Client
}

// NewReader creates a Reader and pings the server.
func NewReader(cfg ReaderConfig) (*Reader, error) {
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

	log.Printf("[redis-reader] connected to %s", cfg.Addr)
	return &Reader{client: client}, nil
}

// Client returns the underlying Redis client.
func (r *Reader) Client() *goredis.Client { return r.client }

// GetSnapshot fetches one ticker's cached snapshot. Returns (nil, nil) on a
// cache miss.
func (r *Reader) GetSnapshot(ctx context.Context, ticker string) (*model.TickerSnapshot, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+ticker).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	var ts model.TickerSnapshot
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("redis decode snapshot: %w", err)
	}
	return &ts, nil
}

// SubscribeRefresh subscribes to the refresh channel and forwards decoded
// messages onto out until ctx is done. Malformed payloads are logged and
// skipped.
func (r *Reader) SubscribeRefresh(ctx context.Context, out chan<- RefreshMessage) {
	pubsub := r.client.Subscribe(ctx, refreshChannel)
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var rm RefreshMessage
				if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil {
					log.Printf("[redis-reader] bad refresh payload: %v", err)
					continue
				}
				select {
				case out <- rm:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Close closes the client.
func (r *Reader) Close() error { return r.client.Close() }
