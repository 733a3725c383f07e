package events

import (
	"context"
	"encoding/json"
	"sync"

	"dispatch-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// Hub tracks connected dashboard clients and fans events out to all of them.
// It implements ports.EventPublisher.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns client registration and delivery until ctx is cancelled, then
// closes every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			logrus.WithFields(logrus.Fields{"user_id": c.UserID, "clients": n}).Info("websocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logrus.WithFields(logrus.Fields{"user_id": c.UserID, "clients": n}).Info("websocket client disconnected")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer.
					delete(h.clients, c)
					close(c.send)
					logrus.WithField("user_id", c.UserID).Warn("websocket client buffer full, disconnecting")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues e for every connected client. It never blocks; when the
// queue is full the event is dropped.
func (h *Hub) Publish(ctx context.Context, e ports.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logrus.WithError(err).WithField("type", e.Type).Error("marshal event")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logrus.WithField("type", e.Type).Warn("event queue full, dropping event")
	}
}

// join hands c to the run loop; false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NoopPublisher discards events. Used by the CLI.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ports.Event) {}
