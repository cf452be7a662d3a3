package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"stocklens/internal/metrics"
)

func fakeClient(h *Hub, tickers ...string) *Client {
	c := &Client{
		send: make(chan []byte, sendBufferSize),
		hub:  h,
		subs: make(map[string]bool),
	}
	for _, tk := range tickers {
		c.subs[tk] = true
	}
	h.register(c)
	return c
}

func TestHub_BroadcastFiltersBySubscription(t *testing.T) {
	h := NewHub(nil)
	all := fakeClient(h) // empty set means all tickers
	aapl := fakeClient(h, "AAPL")
	msft := fakeClient(h, "MSFT")

	h.BroadcastSnapshot("AAPL", []byte(`{"ticker":"AAPL"}`))

	if len(all.send) != 1 {
		t.Errorf("all-tickers client got %d messages, want 1", len(all.send))
	}
	if len(aapl.send) != 1 {
		t.Errorf("AAPL subscriber got %d messages, want 1", len(aapl.send))
	}
	if len(msft.send) != 0 {
		t.Errorf("MSFT subscriber got %d messages, want 0", len(msft.send))
	}

	var env Envelope
	if err := json.Unmarshal(<-aapl.send, &env); err != nil {
		t.Fatalf("envelope decode: %v", err)
	}
	if env.Type != "snapshot" || env.Ticker != "AAPL" {
		t.Errorf("envelope type=%s ticker=%s", env.Type, env.Ticker)
	}
}

func TestHub_SlowClientSkippedNotBlocked(t *testing.T) {
	h := NewHub(nil)
	slow := fakeClient(h)
	for i := 0; i < sendBufferSize; i++ {
		slow.send <- []byte("x")
	}

	done := make(chan struct{})
	go func() {
		h.BroadcastSnapshot("AAPL", []byte(`{}`))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
}

func TestHub_LateClientGetsLatestSnapshot(t *testing.T) {
	h := NewHub(nil)
	h.BroadcastSnapshot("AAPL", []byte(`{"v":1}`))
	h.BroadcastSnapshot("AAPL", []byte(`{"v":2}`))
	h.BroadcastSnapshot("MSFT", []byte(`{"v":3}`))

	late := fakeClient(h, "AAPL")
	if len(late.send) != 1 {
		t.Fatalf("late client got %d replayed messages, want 1", len(late.send))
	}
	var env Envelope
	if err := json.Unmarshal(<-late.send, &env); err != nil {
		t.Fatal(err)
	}
	if env.Ticker != "AAPL" || string(env.Data) != `{"v":2}` {
		t.Errorf("replayed ticker=%s data=%s, want latest AAPL snapshot", env.Ticker, env.Data)
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub(nil)
	c := fakeClient(h)
	h.unregister(c)
	if _, ok := <-c.send; ok {
		t.Error("send channel still open after unregister")
	}
	// Double unregister must not close twice.
	h.unregister(c)
}

func newRefreshServer(secret string) *Server {
	return NewServer(Config{HTTPAddr: ":0", TOTPSecret: secret},
		nil, nil, nil, nil, nil, metrics.NewHealthStatus())
}

func doRefresh(s *Server, method, code string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/refresh", nil)
	if code != "" {
		req.Header.Set("X-Refresh-Code", code)
	}
	rec := httptest.NewRecorder()
	s.handleRefresh(rec, req)
	return rec
}

func TestHandleRefresh_MethodNotAllowed(t *testing.T) {
	rec := doRefresh(newRefreshServer("whatever"), http.MethodGet, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status=%d, want 405", rec.Code)
	}
}

func TestHandleRefresh_DisabledWithoutSecret(t *testing.T) {
	rec := doRefresh(newRefreshServer(""), http.MethodPost, "123456")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status=%d, want 403", rec.Code)
	}
}

func TestHandleRefresh_RejectsBadCode(t *testing.T) {
	// A five-digit passcode can never validate regardless of clock.
	rec := doRefresh(newRefreshServer("JBSWY3DPEHPK3PXP"), http.MethodPost, "12345")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status=%d, want 401", rec.Code)
	}
}

func TestTOTP_GeneratedCodeValidates(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !totp.Validate(code, secret) {
		t.Fatal("generated code did not validate")
	}
}
