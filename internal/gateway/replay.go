package gateway

import "sync"

// replayCache keeps the most recent snapshot envelope per ticker so a
// client connecting between refreshes still receives data immediately.
// Snapshots are whole-state messages, so only the latest one per ticker
// matters; there is no sequence gap to backfill.
type replayCache struct {
	mu     sync.RWMutex
	latest map[string][]byte // ticker → pre-built envelope JSON
}

func newReplayCache() *replayCache {
	return &replayCache{latest: make(map[string][]byte)}
}

// put stores a copy of the envelope as the ticker's latest.
func (rc *replayCache) put(ticker string, envelope []byte) {
	cp := make([]byte, len(envelope))
	copy(cp, envelope)
	rc.mu.Lock()
	rc.latest[ticker] = cp
	rc.mu.Unlock()
}

// replayTo queues every cached envelope the client is subscribed to.
// Full send buffers drop the replay the same way broadcasts do.
func (rc *replayCache) replayTo(c *Client) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	for ticker, envelope := range rc.latest {
		if !c.wants(ticker) {
			continue
		}
		select {
		case c.send <- envelope:
		default:
		}
	}
}
