// Package server provides the HTTP server for the Bindi camera overlay app.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/bindi/internal/server/api"
	"github.com/ayusman/bindi/internal/session"
	"github.com/ayusman/bindi/internal/sticker"
	"github.com/ayusman/bindi/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Session   *session.Session
	Library   *sticker.Library
}

// Server represents the HTTP server for the Bindi application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
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

	if s.config.Store != nil && s.config.Library != nil {
		stickerHandler := api.NewStickerHandler(s.config.Store, s.config.Library, s.config.Session)
		s.mux.Handle("/api/stickers", stickerHandler)
		s.mux.Handle("/api/stickers/", stickerHandler)
	}

	if s.config.Session != nil {
		if s.config.Store != nil {
			captureHandler := api.NewCaptureHandler(s.config.Store, s.config.Session)
			s.mux.Handle("/api/captures", captureHandler)
			s.mux.Handle("/api/captures/", captureHandler)
		}

		s.mux.Handle("/api/overlay", api.NewOverlayHandler(s.config.Session))
		s.mux.Handle("/api/viewport", api.NewViewportHandler(s.config.Session))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Session))
		s.mux.Handle("/api/overlay/ws", NewTransformHandler(s.config.Session))
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
	return http.ListenAndServe(addr, s)
}
