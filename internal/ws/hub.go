package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ataurwd/vps-backend-server/internal/logger"
)

// Hub tracks live websocket connections keyed by account email and
// pushes notification payloads to them. An account may hold several
// connections (multiple tabs); each gets the message.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.email] == nil {
		h.clients[c.email] = make(map[*Client]struct{})
	}
	h.clients[c.email][c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.email]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.email)
		}
	}
	close(c.send)
}

// SendToUser pushes payload to every live connection of one account.
// Offline accounts are skipped; they will see the persisted
// notification on next fetch.
func (h *Hub) SendToUser(email string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.WithError(err).Warn("ws payload marshal failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[email] {
		select {
		case c.send <- body:
		default:
			logger.Log.WithField("email", email).Warn("ws client send buffer full")
		}
	}
}

// Client is one websocket connection.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	email string
	send  chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, email string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		email: email,
		send:  make(chan []byte, 32),
	}
}

// WritePump delivers queued messages until the connection or hub closes.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump discards inbound frames and unregisters on disconnect.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
