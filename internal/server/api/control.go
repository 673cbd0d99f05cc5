package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handcalc/internal/app"
)

// Controller is the part of app.App driven over HTTP.
type Controller interface {
	Activate() error
	Deactivate() error
	Toggle() error
	Reset() error
	Listen() error
	Status() app.Status
}

// ControlHandler serves POST /api/control/{op} and GET /api/status.
type ControlHandler struct {
	app Controller
	ops map[string]func() error
}

// NewControlHandler creates a ControlHandler for a.
func NewControlHandler(a Controller) *ControlHandler {
	return &ControlHandler{
		app: a,
		ops: map[string]func() error{
			"activate":   a.Activate,
			"deactivate": a.Deactivate,
			"toggle":     a.Toggle,
			"reset":      a.Reset,
			"listen":     a.Listen,
		},
	}
}

// ServeHTTP routes /api/status and /api/control/{op}.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/status" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Status())
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/control/")
	op, ok := h.ops[name]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown control operation")
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := op(); err != nil {
		switch {
		case errors.Is(err, app.ErrNotRunning):
			writeError(w, http.StatusServiceUnavailable, "Calculator is not running")
		case errors.Is(err, app.ErrListening):
			writeError(w, http.StatusConflict, "Already listening")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	status := http.StatusOK
	if name == "listen" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, h.app.Status())
}
