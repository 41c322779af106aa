// Package realtime pushes dashboard invalidation events to connected browsers.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBuffer     = 16
)

// DashboardPath is the read model every workflow invalidates on success.
const DashboardPath = "/dashboard/overview"

// Message is the envelope written to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type delivery struct {
	users   []uuid.UUID
	payload []byte
}

// Hub tracks open connections per user.
type Hub struct {
	clients    map[uuid.UUID]map[*client]bool
	deliveries chan delivery
	register   chan *client
	unregister chan *client
	done       chan struct{}
	upgrader   websocket.Upgrader
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID
}

// NewHub creates a hub. allowedOrigins empty accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[uuid.UUID]map[*client]bool),
		deliveries: make(chan delivery, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if origin == allowed || allowed == "*" {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Run is the hub's main loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*client]bool)
			return
		case c := <-h.register:
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*client]bool)
			}
			h.clients[c.userID][c] = true
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.deliveries:
			for _, userID := range d.users {
				for c := range h.clients[userID] {
					select {
					case c.send <- d.payload:
					default:
						log.Printf("⚠️  Send buffer full, dropping client %s", c.userID)
						h.remove(c)
					}
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	conns, ok := h.clients[c.userID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
}

// InvalidateDashboard tells every connection of the given users to refetch
// the dashboard. It never blocks the caller; events are dropped when the hub
// is saturated.
func (h *Hub) InvalidateDashboard(userIDs ...uuid.UUID) {
	if len(userIDs) == 0 {
		return
	}
	payload, err := json.Marshal(Message{
		Type: "invalidate",
		Data: map[string]string{"path": DashboardPath},
	})
	if err != nil {
		log.Printf("❌ Failed to encode invalidation: %v", err)
		return
	}

	users := dedupe(userIDs)
	select {
	case h.deliveries <- delivery{users: users, payload: payload}:
	default:
		log.Printf("⚠️  Dropping dashboard invalidation for %d users", len(users))
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Serve upgrades the request and attaches the connection to userID until the
// peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	if welcome, err := json.Marshal(Message{Type: "connected", Data: map[string]string{"user_id": userID.String()}}); err == nil {
		c.send <- welcome
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	// The welcome frame goes out only once the hub knows the client.
	go c.writePump()
	c.readPump()
}

// readPump only drains control frames; clients never send data we act on.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
