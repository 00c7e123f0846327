// Package server binds the sketch relay to HTTP and WebSocket transport.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing, and HTTP handlers. The Hub owns room
// subscription sets and fans events out; the relay package decides what is
// sent where.
package server
