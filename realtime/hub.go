package realtime

import (
	"log"

	"github.com/wachat/wachat-backend/metrics"
	"github.com/wachat/wachat-backend/models"
)

// Hub is the in-process broadcast channel: it keeps the set of connected
// websocket clients and fans every event out to all of them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub. Run must be started on its own goroutine before
// clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. All registration and fan-out goes through the
// hub's channels so no locking is needed.
func (h *Hub) Run() {
	m := metrics.Registry(metrics.DefaultNamespace)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			m.ConnectedClients.Inc()
			log.Printf("A user connected: %s", client.id)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				m.ConnectedClients.Dec()
				log.Printf("User disconnected: %s", client.id)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block fan-out.
					delete(h.clients, client)
					close(client.send)
					m.ConnectedClients.Dec()
				}
			}
		}
	}
}

// Emit implements Notifier by broadcasting the event to all local clients.
func (h *Hub) Emit(event string, msg *models.Message) {
	data, err := marshalEnvelope(event, msg)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}
	h.BroadcastRaw(event, data)
}

// BroadcastRaw delivers an already-encoded event envelope to all local
// clients. The Redis relay uses this to deliver events received from other
// instances.
func (h *Hub) BroadcastRaw(event string, data []byte) {
	metrics.Registry(metrics.DefaultNamespace).EventsEmitted.WithLabelValues(event).Inc()
	h.broadcast <- data
}
