// Package server provides the HTTP surface of handcalc: control, evaluation,
// settings, the annotated MJPEG stream and the command event websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/handcalc/internal/config"
	"github.com/ayusman/handcalc/internal/server/api"
	"github.com/ayusman/handcalc/internal/store"
)

// Controller is the app surface the server drives.
type Controller = api.Controller

// Config holds the server configuration. Routes whose dependency is nil
// are not registered.
type Config struct {
	StaticDir string
	App       Controller
	Hub       *Hub
	Store     *store.Store
	Settings  config.Config
	Logger    *slog.Logger
}

// Server represents the HTTP server for handcalc.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    logger.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/evaluate", api.EvaluateHandler)
	s.mux.HandleFunc("/api/interpret", api.InterpretHandler)

	if s.config.App != nil {
		control := api.NewControlHandler(s.config.App)
		s.mux.Handle("/api/status", control)
		s.mux.Handle("/api/control/", control)
	}

	if s.config.Store != nil {
		settings := api.NewSettingsHandler(s.config.Store, s.config.Settings)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Hub))
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Hub, s.config.App, s.log))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface. State-changing requests
// from foreign origins are rejected before routing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !safeMethod(r.Method) && !localOrigin(r) {
		s.log.Warn("rejected cross-origin request", "method", r.Method, "path", r.URL.Path, "origin", r.Header.Get("Origin"))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		status := s.config.App.Status()
		response["session_id"] = status.SessionID
		response["camera"] = status.Camera
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
