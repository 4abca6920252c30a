package control

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// the events endpoint only listens on the local metrics address
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans coordinator progress events out to websocket clients. A client
// that falls behind by more than its send buffer is disconnected.
type Hub struct {
	bus     evbus.Bus
	handler func(coordinator.Event)
	logger  logging.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

func NewHub(bus evbus.Bus, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	h := &Hub{bus: bus, logger: logger.With("module", "events"), clients: make(map[*wsClient]struct{})}
	h.handler = h.publish
	return h
}

// Start subscribes to the bus; Stop unsubscribes and drops every client.
func (h *Hub) Start() error {
	return h.bus.Subscribe(coordinator.TopicProgress, h.handler)
}

func (h *Hub) Stop() {
	h.bus.Unsubscribe(coordinator.TopicProgress, h.handler)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) publish(e coordinator.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn(context.Background(), "events client too slow, dropping")
			h.dropLocked(c)
		}
	}
}

func (h *Hub) dropLocked(c *wsClient) {
	if c.closed {
		return
	}
	c.closed = true
	delete(h.clients, c)
	close(c.send)
}

// ServeHTTP upgrades the request and streams events until the client goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.readPump(c)
	h.writePump(c)
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()
			// drain until the channel is closed
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
