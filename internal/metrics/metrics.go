// Package metrics defines the Prometheus instrumentation for the metrics
// engine, the ingestion service, and the gateway, plus a small HTTP server
// exposing /metrics and /healthz.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for stocklens services.
type Metrics struct {
	// Compute engine
	SnapshotsTotal  prometheus.Counter
	SnapshotDur     prometheus.Histogram
	TickersComputed prometheus.Gauge

	// Ingestion
	BarsIngested prometheus.Counter
	IngestErrors prometheus.Counter
	FetchDur     prometheus.Histogram

	// Gateway
	APIRequests *prometheus.CounterVec // labels: endpoint
	WSClients   prometheus.Gauge
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocklens_snapshots_total",
			Help: "Total indicator snapshots computed",
		}),
		SnapshotDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocklens_snapshot_duration_seconds",
			Help:    "Full-table snapshot computation duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		TickersComputed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocklens_tickers_computed",
			Help: "Ticker count of the most recent snapshot",
		}),
		BarsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocklens_bars_ingested_total",
			Help: "Total daily bars written to the store",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocklens_ingest_errors_total",
			Help: "Total failed provider fetches",
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocklens_fetch_duration_seconds",
			Help:    "Provider fetch duration per ticker",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_api_requests_total",
			Help: "API requests by endpoint",
		}, []string{"endpoint"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocklens_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocklens_cache_hits_total",
			Help: "Snapshot cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocklens_cache_misses_total",
			Help: "Snapshot cache misses",
		}),
	}

	prometheus.MustRegister(
		m.SnapshotsTotal,
		m.SnapshotDur,
		m.TickersComputed,
		m.BarsIngested,
		m.IngestErrors,
		m.FetchDur,
		m.APIRequests,
		m.WSClients,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}

// HealthStatus tracks dependency health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected bool `json:"redis_connected"`
	SQLiteOK       bool `json:"sqlite_ok"`

	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite pings the database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.RedisConnected && !h.SQLiteOK {
		overallStatus = "unhealthy"
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
