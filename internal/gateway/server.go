package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"

	"stocklens/internal/compute"
	"stocklens/internal/metrics"
	"stocklens/internal/model"
	redisstore "stocklens/internal/store/redis"
	sqlitestore "stocklens/internal/store/sqlite"
	"stocklens/internal/table"
)

// Config configures the gateway server.
type Config struct {
	HTTPAddr string

	// TOTPSecret guards POST /api/v1/refresh. When empty the endpoint is
	// disabled entirely.
	TOTPSecret string
}

// Server is the dashboard-facing API: cached snapshots over HTTP, live
// updates over WebSocket, and a guarded manual refresh.
type Server struct {
	cfg    Config
	engine *compute.Engine
	bars   *sqlitestore.Reader
	cacheR *redisstore.Reader
	cacheW *redisstore.Writer
	hub    *Hub
	prom   *metrics.Metrics
	health *metrics.HealthStatus
	srv    *http.Server
}

// NewServer wires the gateway's routes.
func NewServer(cfg Config, engine *compute.Engine, bars *sqlitestore.Reader,
	cacheR *redisstore.Reader, cacheW *redisstore.Writer,
	prom *metrics.Metrics, health *metrics.HealthStatus) *Server {

	s := &Server{
		cfg:    cfg,
		engine: engine,
		bars:   bars,
		cacheR: cacheR,
		cacheW: cacheW,
		hub:    NewHub(prom),
		prom:   prom,
		health: health,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/tickers", s.handleTickers)
	mux.HandleFunc("/api/v1/refresh", s.handleRefresh)
	mux.HandleFunc("/ws", s.hub.ServeWS)
	mux.HandleFunc("/healthz", health.ServeHTTP)

	s.srv = &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	return s
}

// Run serves HTTP and reacts to refresh notifications until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	refreshCh := make(chan redisstore.RefreshMessage, 16)
	s.cacheR.SubscribeRefresh(ctx, refreshCh)
	go s.refreshLoop(ctx, refreshCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[gateway] listening on %s", s.cfg.HTTPAddr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// refreshLoop recomputes and broadcasts snapshots whenever ingestion
// announces new bars.
func (s *Server) refreshLoop(ctx context.Context, ch <-chan redisstore.RefreshMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			log.Printf("[gateway] refresh notification for %v", msg.Tickers)
			if err := s.recompute(ctx, msg.Tickers); err != nil {
				log.Printf("[gateway] refresh recompute: %v", err)
			}
		}
	}
}

// recompute rebuilds snapshots for the given tickers (all stored tickers
// when the list is empty), refills the cache, and broadcasts the results.
func (s *Server) recompute(ctx context.Context, tickers []string) error {
	rows, err := s.bars.LoadBars(ctx, tickers, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	snap := s.engine.Snapshot(table.New(rows))
	for ticker, ts := range snap.Tickers {
		if err := s.cacheW.SetSnapshot(ctx, ts); err != nil {
			log.Printf("[gateway] cache snapshot %s: %v", ticker, err)
		}
		data, err := ts.JSON()
		if err != nil {
			log.Printf("[gateway] encode snapshot %s: %v", ticker, err)
			continue
		}
		s.hub.BroadcastSnapshot(ticker, data)
	}
	return nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.prom != nil {
		s.prom.APIRequests.WithLabelValues("snapshot").Inc()
	}
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		http.Error(w, "ticker query parameter required", http.StatusBadRequest)
		return
	}

	cached, err := s.cacheR.GetSnapshot(r.Context(), ticker)
	if err != nil {
		log.Printf("[gateway] cache get %s: %v", ticker, err)
	}
	if cached != nil {
		if s.prom != nil {
			s.prom.CacheHits.Inc()
		}
		writeJSON(w, cached)
		return
	}
	if s.prom != nil {
		s.prom.CacheMisses.Inc()
	}

	ts, err := s.computeTicker(r.Context(), ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ts == nil {
		http.Error(w, "unknown ticker", http.StatusNotFound)
		return
	}
	writeJSON(w, ts)
}

// computeTicker loads one ticker's bars, computes its snapshot, and caches
// it. Returns nil when the store has no bars for the ticker.
func (s *Server) computeTicker(ctx context.Context, ticker string) (*model.TickerSnapshot, error) {
	rows, err := s.bars.LoadBars(ctx, []string{ticker}, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	snap := s.engine.Snapshot(table.New(rows))
	ts := snap.Tickers[ticker]
	if ts == nil {
		return nil, nil
	}
	if err := s.cacheW.SetSnapshot(ctx, ts); err != nil {
		log.Printf("[gateway] cache snapshot %s: %v", ticker, err)
	}
	return ts, nil
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	if s.prom != nil {
		s.prom.APIRequests.WithLabelValues("tickers").Inc()
	}
	tickers, err := s.bars.Tickers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"tickers": tickers})
}

// handleRefresh recomputes every stored ticker on demand. The caller must
// present a valid TOTP passcode in X-Refresh-Code.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.prom != nil {
		s.prom.APIRequests.WithLabelValues("refresh").Inc()
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if s.cfg.TOTPSecret == "" {
		http.Error(w, "refresh disabled", http.StatusForbidden)
		return
	}
	if !totp.Validate(r.Header.Get("X-Refresh-Code"), s.cfg.TOTPSecret) {
		http.Error(w, "invalid refresh code", http.StatusUnauthorized)
		return
	}

	if err := s.recompute(r.Context(), nil); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[gateway] response encode: %v", err)
	}
}
