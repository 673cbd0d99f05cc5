package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/handcalc/internal/event"
)

// StreamHandler serves the annotated calculator frames as MJPEG.
type StreamHandler struct {
	hub *Hub
}

// NewStreamHandler creates a new StreamHandler reading frames from hub.
func NewStreamHandler(hub *Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var last *event.Frame
	for {
		frame, next := h.hub.Frame()
		if frame != nil && frame != last {
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame.Data))
			if _, err := w.Write(frame.Data); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			last = frame
		}

		select {
		case <-r.Context().Done():
			return
		case <-next:
		}
	}
}
