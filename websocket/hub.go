package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub fans live stopwatch frames out to subscribed clients. A client follows
// one employee's stopwatch, or every stopwatch when its employee id is empty.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Client struct {
	Hub        *Hub
	Conn       *websocket.Conn
	Send       chan []byte
	EmployeeID string
	mu         sync.RWMutex
}

// SubscribeMessage lets a connected client retarget its stopwatch feed.
type SubscribeMessage struct {
	Type       string `json:"type"`
	EmployeeID string `json:"employee_id"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Stopwatch client registered", "employee_id", client.EmployeeID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			slog.Info("Stopwatch client unregistered", "employee_id", client.EmployeeID)
		}
	}
}

// Publish delivers a frame to every client following employeeID, plus clients
// following all employees. Slow clients are dropped rather than blocked on.
func (h *Hub) Publish(employeeID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		client.mu.RLock()
		target := client.EmployeeID
		client.mu.RUnlock()
		if target != "" && target != employeeID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			slog.Warn("Dropping slow stopwatch client", "employee_id", target)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, employeeID string) *Client {
	client := &Client{
		Hub:        h,
		Conn:       conn,
		Send:       make(chan []byte, 16),
		EmployeeID: employeeID,
	}

	h.register <- client
	return client
}

// ReadPump consumes subscribe messages until the connection closes. The feed
// is one-way otherwise.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("Stopwatch client read error", "error", err)
			}
			return
		}

		var msg SubscribeMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Warn("Ignoring malformed stopwatch message", "error", err)
			continue
		}
		if msg.Type == "subscribe" {
			c.mu.Lock()
			c.EmployeeID = msg.EmployeeID
			c.mu.Unlock()
			slog.Info("Stopwatch client resubscribed", "employee_id", msg.EmployeeID)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
