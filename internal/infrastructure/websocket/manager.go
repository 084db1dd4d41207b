package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"grievance/internal/domain/entity"
	"grievance/pkg/logger"
	"grievance/pkg/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Manager tracks every open connection per user. A user may hold several
// connections (one per tab or device) and each receives every push.
type Manager struct {
	clients    map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
	// done is closed once the main loop has exited.
	done chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.UserID] == nil {
					m.clients[client.UserID] = make(map[*Client]bool)
				}
				m.clients[client.UserID][client] = true
				m.mutex.Unlock()
				logger.Debug("Websocket client registered: %s", client.UserID)

			case client := <-m.Unregister:
				if m.detach(client) {
					close(client.Send)
				}
				logger.Debug("Websocket client unregistered: %s", client.UserID)

			case <-ctx.Done():
				close(m.done)
				m.mutex.RLock()
				for _, conns := range m.clients {
					for c := range conns {
						if c.Conn != nil {
							c.Conn.Close()
						}
					}
				}
				m.mutex.RUnlock()
				return
			}
		}
	}()
}

// unregister hands client to the main loop, or detaches it directly once the
// loop has stopped and nothing receives on Unregister.
func (m *Manager) unregister(c *Client) {
	select {
	case m.Unregister <- c:
	case <-m.done:
		if m.detach(c) {
			close(c.Send)
		}
	}
}

// Add registers client unless the manager has stopped.
func (m *Manager) Add(c *Client) bool {
	select {
	case m.Register <- c:
		return true
	case <-m.done:
		return false
	}
}

// detach forgets client and reports whether it was still registered. Send is
// only closed by the Unregister path, after ReadPump has stopped.
func (m *Manager) detach(client *Client) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	conns, ok := m.clients[client.UserID]
	if !ok || !conns[client] {
		return false
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(m.clients, client.UserID)
	}
	return true
}

// SendToUser queues message on every connection of userID and reports how
// many received it. A connection whose buffer is full is closed; its pumps
// then exit and unregister it.
func (m *Manager) SendToUser(userID string, message []byte) int {
	m.mutex.RLock()
	var stalled []*Client
	delivered := 0
	for c := range m.clients[userID] {
		select {
		case c.Send <- message:
			delivered++
		default:
			stalled = append(stalled, c)
		}
	}
	m.mutex.RUnlock()

	for _, c := range stalled {
		logger.Warn("Websocket client %s is not draining, closing connection", c.UserID)
		c.Conn.Close()
	}
	return delivered
}

func (m *Manager) ConnectedUsers() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Deliver pushes a notification to the recipient's local connections.
func (m *Manager) Deliver(n *entity.Notification) error {
	payload, err := json.Marshal(WSMessage{
		Type:      MessageTypeNotification,
		Data:      n,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	if m.SendToUser(n.UserID, payload) > 0 {
		metrics.Default.NotificationsPushed.Inc()
	}
	return nil
}

// Publish satisfies the notification publisher for single-instance
// deployments: delivery is local only.
func (m *Manager) Publish(ctx context.Context, n *entity.Notification) error {
	return m.Deliver(n)
}

// ReadPump reads messages from the WebSocket connection until it closes.
func (c *Client) ReadPump(m *Manager, handler *MessageHandler) {
	defer func() {
		m.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		if handler != nil {
			handler.Handle(c, message)
		}
	}
}

// WritePump sends queued messages and keeps the connection alive with pings.
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
				logger.Warn("Websocket write error for %s: %v", c.UserID, err)
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
