package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ Publisher = (*Hub)(nil)

// Hub tracks one websocket client per user and fans realtime events out to
// them. Only the Run goroutine mutates the client set.
type Hub struct {
	clients    map[uuid.UUID]*Client
	clientsMux sync.RWMutex

	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log *zap.Logger
}

type delivery struct {
	userID uuid.UUID
	data   []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.broadcast:
			h.deliver(d)

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	// A newer connection replaces the old one for the same user.
	if old, exists := h.clients[client.userID]; exists {
		close(old.send)
	} else {
		activeConnections.Inc()
	}
	h.clients[client.userID] = client

	h.log.Debug("client connected", zap.String("user_id", client.userID.String()), zap.Int("clients", len(h.clients)))
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if current, exists := h.clients[client.userID]; exists && current == client {
		close(client.send)
		delete(h.clients, client.userID)
		activeConnections.Dec()
		h.log.Debug("client disconnected", zap.String("user_id", client.userID.String()), zap.Int("clients", len(h.clients)))
	}
}

func (h *Hub) deliver(d delivery) {
	h.clientsMux.RLock()
	client, exists := h.clients[d.userID]
	h.clientsMux.RUnlock()
	if !exists {
		return
	}

	select {
	case client.send <- d.data:
	default:
		// A client that cannot keep up is dropped; it reloads over REST.
		eventsDropped.Inc()
		h.unregisterClient(client)
	}
}

// Publish queues event for userID. It never blocks; events for offline
// users or a saturated hub are dropped.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("failed to encode event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- delivery{userID: userID, data: data}:
	default:
		eventsDropped.Inc()
	}
}

// attach hands a new client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
		activeConnections.Dec()
	}
	h.clientsMux.Unlock()
	close(h.done)
}

func (h *Hub) ActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}
