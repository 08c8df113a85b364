package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    api.Engine
	Touch     *TouchHandler
	Gestures  *GestureStreamHandler
	Logger    *zap.Logger
}

// Server represents the HTTP server for the Mudra daemon.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register engine API handlers if an engine is configured
	if s.config.Engine != nil {
		s.mux.Handle("/api/config", api.NewConfigHandler(s.config.Engine))

		presetHandler := api.NewPresetHandler(s.config.Engine)
		s.mux.Handle("/api/presets", presetHandler)
		s.mux.Handle("/api/presets/", presetHandler)

		s.mux.Handle("/api/metrics", api.NewMetricsHandler(s.config.Engine))
		s.mux.Handle("/api/capabilities", api.NewCapabilitiesHandler(s.config.Engine))
	}

	// Register the gesture event log if a store is configured
	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventsHandler(s.config.Store))
	}

	// Register the touch surface WebSocket endpoint
	if s.config.Touch != nil {
		s.mux.Handle("/api/touch", s.config.Touch)
	}

	// Register the gesture stream WebSocket endpoint
	if s.config.Gestures != nil {
		s.mux.Handle("/api/gestures", s.config.Gestures)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.config.Logger.Info("http server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}
