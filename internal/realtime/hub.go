package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

const clientSendBuffer = 16

// Client represents one connected WebSocket session. A user with
// several open tabs has several clients sharing the same UserID.
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	send   chan []byte
}

// writePump drains the send buffer onto the socket. Runs in its own
// goroutine per client; exits when the send channel closes.
func (c *Client) writePump() {
	defer c.Conn.Close()
	for payload := range c.send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// Hub maintains the set of active clients grouped by user and fans
// relay payloads out to every session of the addressed user.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			sessions := h.clients[client.UserID]
			if sessions == nil {
				sessions = make(map[*Client]bool)
				h.clients[client.UserID] = sessions
			}
			sessions[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if sessions, ok := h.clients[client.UserID]; ok {
				if _, ok := sessions[client]; ok {
					delete(sessions, client)
					close(client.send)
					if len(sessions) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register attaches a session and starts its write pump.
func (h *Hub) Register(client *Client) {
	client.send = make(chan []byte, clientSendBuffer)
	go client.writePump()
	h.register <- client
}

// Unregister detaches a session and closes its connection.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Deliver sends a payload to every open session of the user. Delivery
// is best-effort: a session whose buffer is full is skipped, and the
// next full fetch catches it up.
func (h *Hub) Deliver(userID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			log.Printf("realtime: dropping event for slow session of user %d", userID)
		}
	}
}

// SessionCount reports how many sessions a user has open on this
// instance.
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
