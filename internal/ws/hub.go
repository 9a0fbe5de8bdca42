package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/shell"
	"team-dashboard/backend/pkg/events"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/shared/observability"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Pages only send pings and close frames
	maxMessageSize = 4 * 1024

	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// IdentityReader reads the identity a page shows when it connects
type IdentityReader interface {
	Get(ctx context.Context, profileID string) (string, error)
}

// Message is what a page receives
type Message struct {
	Type  string `json:"type"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// Hub tracks the connected pages and feeds each one its identity label and
// the storage changes made by the other pages of its profile.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	identity   IdentityReader
	pageBus    events.Bus
	storageBus events.Bus
	metrics    *observability.Metrics
	log        *logger.Logger
}

func NewHub(identity IdentityReader, pageBus, storageBus events.Bus, metrics *observability.Metrics, log *logger.Logger) *Hub {
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		identity:   identity,
		pageBus:    pageBus,
		storageBus: storageBus,
		metrics:    metrics,
		log:        log,
	}
}

// Run processes registrations until ctx is done, then disconnects everyone
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.PageConnected(ctx, 1)
			h.log.Debug("Page connected", "profile", client.ProfileID, "page", client.PageID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.metrics.PageConnected(ctx, -1)
				h.log.Debug("Page disconnected", "profile", client.ProfileID, "page", client.PageID)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

// add hands c to Run. It reports false once Run has returned.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// remove hands c back to Run, or closes it directly once Run has returned
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// Pages returns how many pages of profileID are connected
func (h *Hub) Pages(profileID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.clients {
		if c.ProfileID == profileID {
			n++
		}
	}
	return n
}

// attach wires the label and the storage forwarder of a new client
func (h *Hub) attach(ctx context.Context, c *Client) error {
	initial, err := h.identity.Get(ctx, c.ProfileID)
	if err != nil {
		return err
	}

	c.label = shell.NewIdentityLabel(c.ProfileID, c.PageID, initial, func(v string) {
		c.enqueue(Message{Type: "identity", Value: v})
	})
	c.label.Attach(h.pageBus, h.storageBus)

	c.cancelStorage = h.storageBus.Subscribe(events.TopicStorage, func(e events.Event) {
		if e.Profile != c.ProfileID || e.Page == c.PageID {
			return
		}
		msg := Message{Type: "storage", Key: e.Key}
		if e.Key == models.KeyCurrentRole {
			msg.Value = e.Value
		}
		c.enqueue(msg)
	})

	c.enqueue(Message{Type: "identity", Value: c.label.Text()})
	return nil
}
