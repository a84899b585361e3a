// Package hub tracks live push-channel connections and fans events out to
// them. Registry membership is the sole authority for "is this client still
// reachable": a connection that fails a send is pruned, never retried.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nbmusic/remote/internal/models"
)

// Conn is the minimal transport surface the hub needs from a push connection.
type Conn interface {
	WriteMessage(data []byte) error
	Close() error
}

// Client is one registered push-channel connection. Each client drains its
// own buffered send queue on a dedicated writer goroutine, so one slow or
// dead connection never blocks delivery to the rest.
type Client struct {
	ID   string
	hub  *Hub
	conn Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
}

// Hub is the connection registry and broadcast fan-out.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a connection to the registry and starts its writer.
func (h *Hub) Register(conn Conn) *Client {
	c := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
		quit: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	go c.writePump()

	slog.Info("push client connected",
		slog.String("client_id", c.ID),
		slog.Int("connected_clients", total))
	return c
}

// Unregister removes the client and tears down its connection. Safe to call
// multiple times and from any goroutine.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, registered := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	c.stop()

	if registered {
		slog.Info("push client disconnected",
			slog.String("client_id", c.ID),
			slog.Int("connected_clients", total))
	}
}

// Broadcast serializes the event envelope once and enqueues it to every
// registered connection. A connection whose queue is unavailable is pruned
// rather than aborting the sweep.
func (h *Hub) Broadcast(eventType string, data any) {
	frame, err := json.Marshal(models.Event{Type: eventType, Data: data})
	if err != nil {
		slog.Error("failed to serialize broadcast event",
			slog.String("event", eventType),
			slog.Any("error", err))
		return
	}

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if !c.enqueue(frame) {
			h.Unregister(c)
		}
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Send delivers an event to this client only. Used for welcome messages and
// per-connection status replies.
func (c *Client) Send(eventType string, data any) {
	frame, err := json.Marshal(models.Event{Type: eventType, Data: data})
	if err != nil {
		slog.Error("failed to serialize event",
			slog.String("event", eventType),
			slog.Any("error", err))
		return
	}
	if !c.enqueue(frame) {
		c.hub.Unregister(c)
	}
}

// enqueue reports false when the client is stopped or its queue is full, in
// which case the caller prunes it.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.quit:
		return false
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// writePump is the single writer for the underlying connection, preserving
// emission order per client.
func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case <-c.quit:
			return
		case frame := <-c.send:
			if err := c.conn.WriteMessage(frame); err != nil {
				c.hub.Unregister(c)
				return
			}
		}
	}
}

func (c *Client) stop() {
	c.once.Do(func() {
		close(c.quit)
		c.conn.Close()
	})
}
