// Package server wires HTTP handlers into a ServeMux for the relay.
package server

import "net/http"

// Routes returns a ServeMux with the health check and WebSocket endpoints.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	health := s.origins.withCORS(HealthHandler)
	mux.HandleFunc("/{$}", health)
	mux.HandleFunc("/health", health)
	mux.HandleFunc("/ws", s.WebSocketHandler)
	return mux
}
