package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/cvrdincake/m0-alerts/internal/alert"
)

// Frame is the wire representation of an alert sent to every attached display
// client.
type Frame struct {
	Type      alert.Category `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"` // epoch milliseconds
}

// frameFor builds the wire frame for an alert. The payload passes through
// untouched; the rendering layer interprets it.
func frameFor(a alert.Alert) Frame {
	return Frame{
		Type:      a.Type,
		Data:      a.Payload,
		Timestamp: a.ReceivedAt.UnixMilli(),
	}
}

// Hub manages the lifecycle of attached display clients and fans each alert
// out to all of them. It is safe for concurrent use.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
}

// NewHub allocates and initialises a Hub. Call Run() in a goroutine to start
// the event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 256),
	}
}

// Run is the hub's main event loop. It must be executed in a dedicated
// goroutine. It stops when all channels are drained and the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("ws: client %s attached", client.ID)

		case client := <-h.unregister:
			h.detach(client)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for _, client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// The client cannot keep up; detach it rather than block
					// or stall delivery to the others.
					delete(h.clients, client.ID)
					close(client.send)
					log.Printf("ws: client %s detached (send buffer full)", client.ID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// detach removes a client from the registry. It is idempotent: detaching an
// already-detached client is a no-op.
func (h *Hub) detach(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
		log.Printf("ws: client %s detached", client.ID)
	}
}

// Publish serializes the alert to its wire frame once and enqueues it for
// delivery to every currently attached client. It never blocks waiting for a
// client and never returns a delivery error to the caller.
func (h *Hub) Publish(a alert.Alert) {
	data, err := json.Marshal(frameFor(a))
	if err != nil {
		log.Printf("ws: failed to marshal alert %s: %v", a.ID, err)
		return
	}
	h.broadcast <- data
}

// Attach enqueues a new client for addition to the hub.
func (h *Hub) Attach(c *Client) {
	h.register <- c
}

// Detach enqueues a client for removal from the hub.
func (h *Hub) Detach(c *Client) {
	h.unregister <- c
}

// ClientCount returns the number of currently attached display clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
