package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ayusman/handcalc/internal/app"
	"github.com/ayusman/handcalc/internal/event"
)

// sendBuffer is how many undelivered messages a websocket client may have
// before it is dropped.
const sendBuffer = 32

// Message is the JSON shape sent to /api/events clients.
type Message struct {
	Type      string      `json:"type"`
	Text      string      `json:"text,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Status    *app.Status `json:"status,omitempty"`
}

type client struct {
	send chan []byte
}

// Hub is a display sink that fans command events out to websocket clients
// and keeps the latest frame for MJPEG streams.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	frame   *event.Frame
	next    chan struct{}
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:     logger.With("component", "server.hub"),
		clients: make(map[*client]struct{}),
		next:    make(chan struct{}),
	}
}

// OnEvent implements display.Sink. It never blocks: clients whose buffer
// is full are disconnected.
func (h *Hub) OnEvent(e event.Event) {
	if e.Kind == event.KindFrameReady {
		h.setFrame(e.Frame)
		return
	}

	data, err := json.Marshal(Message{Type: e.Kind.String(), Text: e.Text})
	if err != nil {
		h.log.Error("marshal event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("dropping slow websocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) setFrame(f *event.Frame) {
	if f == nil {
		return
	}
	h.mu.Lock()
	h.frame = f
	close(h.next)
	h.next = make(chan struct{})
	h.mu.Unlock()
}

// Frame returns the latest frame, nil before the first one, and a channel
// closed when a newer frame arrives.
func (h *Hub) Frame() (*event.Frame, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame, h.next
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register() *client {
	c := &client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
