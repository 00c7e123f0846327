// Package relaytest provides an in-memory relay.GroupChannel that records
// every delivery, for exercising the relay without sockets.
package relaytest

import (
	"encoding/json"
	"sync"

	"github.com/Tyrowin/sketchrelay/internal/protocol"
)

// Groups is a synchronous in-memory GroupChannel.
type Groups struct {
	mu      sync.Mutex
	members map[string][]string
	inbox   map[string][][]byte
}

// NewGroups returns an empty Groups.
func NewGroups() *Groups {
	return &Groups{
		members: make(map[string][]string),
		inbox:   make(map[string][][]byte),
	}
}

// Subscribe adds connID to roomID. Subscribing twice is a no-op.
func (g *Groups) Subscribe(connID, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range g.members[roomID] {
		if id == connID {
			return
		}
	}
	g.members[roomID] = append(g.members[roomID], connID)
}

// Publish records payload for every member of roomID except excludeConnID.
func (g *Groups) Publish(roomID string, payload []byte, excludeConnID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range g.members[roomID] {
		if excludeConnID != "" && id == excludeConnID {
			continue
		}
		g.inbox[id] = append(g.inbox[id], payload)
	}
}

// Send records payload for connID.
func (g *Groups) Send(connID string, payload []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inbox[connID] = append(g.inbox[connID], payload)
}

// Members returns the connections subscribed to roomID.
func (g *Groups) Members(roomID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.members[roomID]...)
}

// Events decodes every payload delivered to connID, oldest first.
func (g *Groups) Events(connID string) []protocol.Envelope {
	g.mu.Lock()
	raw := append([][]byte(nil), g.inbox[connID]...)
	g.mu.Unlock()

	return decodeAll(raw)
}

// Drain returns and forgets every event delivered to connID.
func (g *Groups) Drain(connID string) []protocol.Envelope {
	g.mu.Lock()
	raw := g.inbox[connID]
	delete(g.inbox, connID)
	g.mu.Unlock()

	return decodeAll(raw)
}

func decodeAll(raw [][]byte) []protocol.Envelope {
	events := make([]protocol.Envelope, 0, len(raw))
	for _, payload := range raw {
		var env protocol.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			env = protocol.Envelope{Event: "<undecodable>", Data: payload}
		}
		events = append(events, env)
	}
	return events
}
