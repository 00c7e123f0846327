// Package server exposes HTTP handlers for WebSocket upgrades and health
// checks.
package server

import (
	"fmt"
	"log"
	"net/http"
)

// WebSocketHandler handles WebSocket upgrade requests. It validates that the
// request uses the GET method, upgrades the connection, and registers a new
// Client whose frames are routed to the relay.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s.hub, s.relay, r.RemoteAddr, s.config)

	// The hub launches the pump goroutines once the client is registered.
	s.hub.Register(client)
}

// HealthHandler is the liveness endpoint. It always answers "ok".
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "ok")
}
