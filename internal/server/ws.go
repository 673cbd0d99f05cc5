package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handcalc/internal/server/api"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: localOrigin,
}

// EventsHandler streams command events to websocket clients. Each client
// first receives a hello message with the session id and current status.
type EventsHandler struct {
	hub *Hub
	app api.Controller
	log *slog.Logger
}

// NewEventsHandler creates an EventsHandler. a may be nil.
func NewEventsHandler(hub *Hub, a api.Controller, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{hub: hub, app: a, log: logger.With("component", "server.events")}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "error", err)
		return
	}

	hello := Message{Type: "hello"}
	if h.app != nil {
		status := h.app.Status()
		hello.SessionID = status.SessionID
		hello.Status = &status
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		conn.Close()
		return
	}

	c := h.hub.register()
	go h.write(conn, c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.hub.unregister(c)
}

// write sends queued messages until the hub closes c.send, then closes the
// connection.
func (h *EventsHandler) write(conn *websocket.Conn, c *client) {
	defer conn.Close()
	for msg := range c.send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("websocket write", "error", err)
			h.hub.unregister(c)
			return
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
