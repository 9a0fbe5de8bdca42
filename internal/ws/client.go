package ws

import (
	"encoding/json"
	"sync"
	"time"

	"team-dashboard/backend/internal/shell"
	"team-dashboard/backend/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client is one connected page
type Client struct {
	ProfileID string
	PageID    string
	Conn      *websocket.Conn
	Hub       *Hub

	send          chan []byte
	label         *shell.IdentityLabel
	cancelStorage func()
	log           *logger.Logger

	mu     sync.Mutex
	closed bool
}

// enqueue drops the message when the page is not keeping up
func (c *Client) enqueue(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("Dropping page message, send buffer full", "type", m.Type)
	}
}

func (c *Client) close() {
	if c.label != nil {
		c.label.Close()
	}
	if c.cancelStorage != nil {
		c.cancelStorage()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump only watches for the page going away
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket close", "error", err.Error())
			}
			return
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
		case message, ok := <-c.send:
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
