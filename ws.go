package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/metrics"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is what the page sends: its measured board size once after
// connecting, and playback commands.
type clientMessage struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *wsHub {
	return &wsHub{clients: make(map[*websocket.Conn]struct{})}
}

// add registers c and sends it the initial snapshot before any broadcast can reach it.
func (h *wsHub) add(c *websocket.Conn, initial any) error {
	data, err := json.Marshal(initial)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := write(c, data); err != nil {
		return err
	}
	h.clients[c] = struct{}{}
	metrics.BoardClients.Set(float64(len(h.clients)))
	return nil
}

func (h *wsHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	metrics.BoardClients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *wsHub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error(err, "Failed to encode board snapshot")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := write(c, data); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
	metrics.BoardClients.Set(float64(len(h.clients)))
}

func write(c *websocket.Conn, data []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, data)
}

// readPump dispatches client messages until the connection fails.
func (h *wsHub) readPump(c *websocket.Conn, handle func(clientMessage)) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("Ignoring malformed client message", "error", err)
			continue
		}
		handle(msg)
	}
}
