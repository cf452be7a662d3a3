package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a single WebSocket peer.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	subMu sync.RWMutex
	subs  map[string]bool // empty set means "all tickers"
}

// subscribeMessage is the only inbound message clients send: the set of
// tickers they want updates for.
type subscribeMessage struct {
	Tickers []string `json:"tickers"`
}

// ServeWS upgrades the request and runs the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade: %v", err)
		return
	}

	c := &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		hub:  h,
		subs: make(map[string]bool),
	}

	// Initial subscription may arrive as a query parameter.
	if tk := r.URL.Query().Get("ticker"); tk != "" {
		c.subs[tk] = true
	}

	h.register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Client) wants(ticker string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	if len(c.subs) == 0 {
		return true
	}
	return c.subs[ticker]
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var sub subscribeMessage
		if err := json.Unmarshal(data, &sub); err != nil {
			log.Printf("[gateway] bad subscribe message: %v", err)
			continue
		}
		c.subMu.Lock()
		c.subs = make(map[string]bool, len(sub.Tickers))
		for _, tk := range sub.Tickers {
			c.subs[tk] = true
		}
		c.subMu.Unlock()

		// Newly subscribed tickers get their latest snapshot right away.
		c.hub.replay.replayTo(c)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
