package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"todo_api/internal/domain"
	"todo_api/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "Websocket clients subscribed to todo changes",
	})
	DroppedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_messages_total",
		Help: "Todo change events not delivered because a buffer was full",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(DroppedMessages)
}

// Hub fans todo change events out to every connected client.
// The client set is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			ConnectedClients.Inc()
			logger.Debug("ws client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				logger.Debug("ws client disconnected", "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					DroppedMessages.Inc()
					h.remove(c)
					logger.Warn("ws client dropped, send buffer full")
				}
			}
		}
	}
}

// Publish queues an event for all clients without blocking the caller
func (h *Hub) Publish(ev domain.TodoEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("failed to encode todo event", "error", err, "type", ev.Type)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		DroppedMessages.Inc()
		logger.Warn("ws broadcast queue full, event dropped", "type", ev.Type)
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Join registers c; false means the hub has stopped
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters c; safe to call after the hub stopped
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// caller is the Run goroutine
func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
	ConnectedClients.Dec()
}
