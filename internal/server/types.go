// Package server defines the messages that flow through the hub's event
// loop and utility helpers shared by client and hub logic.
package server

import "strings"

// BroadcastMessage is a payload published to every member of a room,
// optionally excluding the connection that caused it.
type BroadcastMessage struct {
	Room    string
	Exclude string
	Payload []byte
}

// DirectMessage is a payload addressed to a single connection.
type DirectMessage struct {
	ClientID string
	Payload  []byte
}

type subscription struct {
	clientID string
	room     string
}

// FrameHandler consumes frames read from a client connection. Reject reports
// a frame the connection refused before it reached Handle.
type FrameHandler interface {
	Handle(connID string, raw []byte)
	Reject(connID string, err error)
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
