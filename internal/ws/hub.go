package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go-restaurant-authz/internal/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2/log"
)

// Client is the part of *websocket.Conn the hub uses.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Event is a state-change notification rebroadcast to every open admin
// session so their views converge.
type Event struct {
	Type     string      `json:"type"`
	Action   string      `json:"action"`
	EntityID string      `json:"entity_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Actor    string      `json:"actor,omitempty"`
	Message  string      `json:"message,omitempty"`
	SentAt   time.Time   `json:"sent_at"`
}

// broadcastQueue bounds the events waiting for the Run loop.
const broadcastQueue = 256

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	mutex      sync.Mutex
	done       chan struct{}
	stopOnce   sync.Once
	metrics    *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
		metrics:    m,
	}
}

// Run serves the hub until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Debug("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
					h.metrics.RecordBroadcastDrop()
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Publish marshals the event and queues it for the Run loop. Events from one
// caller reach clients in publish order. Publish blocks only while the queue
// is full; events published after Stop are discarded.
func (h *Hub) Publish(event Event) {
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}
	msg, err := json.Marshal(event)
	if err != nil {
		log.Errorf("ws: marshal %s event: %v", event.Type, err)
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.Broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Join registers conn unless the hub already stopped. It reports whether
// conn was registered.
func (h *Hub) Join(conn Client) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters conn unless the hub already stopped.
func (h *Hub) Leave(conn Client) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}
