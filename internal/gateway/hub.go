// Package gateway serves computed snapshots to the dashboard over HTTP and
// WebSocket, and exposes the TOTP-guarded refresh endpoint.
package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"stocklens/internal/metrics"
)

// Envelope wraps every message pushed to WebSocket clients.
type Envelope struct {
	Type   string          `json:"type"` // "snapshot"
	Ticker string          `json:"ticker"`
	Data   json.RawMessage `json:"data"`
	TS     string          `json:"ts"`
}

// Hub tracks connected WebSocket clients and fans snapshot updates out to
// the ones subscribed to the affected ticker.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	replay  *replayCache
	prom    *metrics.Metrics // nil disables instrumentation
}

// NewHub creates an empty hub.
func NewHub(prom *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		replay:  newReplayCache(),
		prom:    prom,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	if h.prom != nil {
		h.prom.WSClients.Set(float64(n))
	}
	log.Printf("[gateway] ws client connected (%d total)", n)

	// New clients start from the latest known snapshots.
	h.replay.replayTo(c)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if h.prom != nil {
		h.prom.WSClients.Set(float64(n))
	}
	log.Printf("[gateway] ws client disconnected (%d total)", n)
}

// BroadcastSnapshot pushes one ticker's snapshot JSON to every subscribed
// client. Slow clients are skipped rather than blocked on.
func (h *Hub) BroadcastSnapshot(ticker string, data []byte) {
	envelope, err := json.Marshal(Envelope{
		Type:   "snapshot",
		Ticker: ticker,
		Data:   data,
		TS:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("[gateway] envelope encode: %v", err)
		return
	}
	h.replay.put(ticker, envelope)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(ticker) {
			continue
		}
		select {
		case c.send <- envelope:
		default:
			// drop for this client if its send buffer is full
		}
	}
}
