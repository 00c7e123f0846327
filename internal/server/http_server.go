// Package server constructs and starts the relay's HTTP service with helpers
// that apply sensible production defaults.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/sketchrelay/internal/relay"
	"github.com/Tyrowin/sketchrelay/internal/room"
)

// Server owns the room registry, hub, and relay for one process.
type Server struct {
	config   Config
	rooms    *room.Registry
	hub      *Hub
	relay    *relay.Relay
	origins  *originPolicy
	upgrader websocket.Upgrader
}

// New assembles a Server. The hub is not running until Start is called.
func New(cfg *Config, rooms *room.Registry) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	sanitized := cfg.Sanitized()

	hub := NewHub()
	s := &Server{
		config:  sanitized,
		rooms:   rooms,
		hub:     hub,
		relay:   relay.New(rooms, hub),
		origins: newOriginPolicy(sanitized.AllowedOrigins),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}
	return s
}

// Config returns the sanitized configuration in use.
func (s *Server) Config() Config {
	return s.config
}

// Hub returns the server's hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Rooms returns the server's room registry.
func (s *Server) Rooms() *room.Registry {
	return s.rooms
}

// Start runs the hub in a separate goroutine. It must be called before
// clients connect.
func (s *Server) Start() {
	go s.hub.Run()
	log.Println("Hub started and ready to manage WebSocket connections")
}

// Shutdown stops the HTTP server, if any, and then the hub.
func (s *Server) Shutdown(httpServer *http.Server, timeout time.Duration) error {
	var errs []error
	if httpServer != nil {
		if err := ShutdownServer(httpServer, timeout); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.hub.Shutdown(timeout); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CreateServer creates and configures an HTTP server with the specified port and handler.
// It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns nil when the server was closed by Shutdown.
func StartServer(server *http.Server) error {
	fmt.Printf("[server] listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting active connections.
// It waits for active connections to close or until the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}
