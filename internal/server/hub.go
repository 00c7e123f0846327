// Package server coordinates client registration, room subscription, event
// fan-out, and connection cleanup via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// Hub manages all WebSocket client connections and the rooms they are
// subscribed to. All mutations happen on the Run goroutine; the mutex only
// guards the maps for the read-only accessors.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	broadcast  chan BroadcastMessage
	direct     chan DirectMessage
	subscribe  chan subscription
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary channels
// and maps. The returned Hub is ready to manage WebSocket connections once Run
// is started.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		broadcast:  make(chan BroadcastMessage),
		direct:     make(chan DirectMessage),
		subscribe:  make(chan subscription),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register hands a client to the hub. Clients with a live connection get
// their read and write pumps started by the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub and every room it joined.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Subscribe adds the connection to a room. It returns once the hub has
// accepted the request, so later publishes from the same caller see it.
func (h *Hub) Subscribe(connID, roomID string) {
	select {
	case h.subscribe <- subscription{clientID: connID, room: roomID}:
	case <-h.ctx.Done():
	}
}

// Publish delivers payload to every member of roomID except excludeConnID.
func (h *Hub) Publish(roomID string, payload []byte, excludeConnID string) {
	select {
	case h.broadcast <- BroadcastMessage{Room: roomID, Exclude: excludeConnID, Payload: payload}:
	case <-h.ctx.Done():
	}
}

// Send delivers payload to one connection.
func (h *Hub) Send(connID string, payload []byte) {
	select {
	case h.direct <- DirectMessage{ClientID: connID, Payload: payload}:
	case <-h.ctx.Done():
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients subscribed to roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[roomID])
}

// Run starts the hub's main event loop. This method should be called in a
// separate goroutine as it runs until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.removeClient(client, "disconnected")

		case sub := <-h.subscribe:
			h.handleSubscribe(sub)

		case msg := <-h.broadcast:
			h.handleBroadcast(msg)

		case msg := <-h.direct:
			h.handleDirect(msg)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		log.Printf("Received nil client registration; skipping")
		return
	}

	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)

	if client.conn == nil {
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleSubscribe(sub subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client, ok := h.clients[sub.clientID]
	if !ok {
		log.Printf("Ignoring subscription of unknown client %s to room %q", sub.clientID, sub.room)
		return
	}

	members, ok := h.rooms[sub.room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[sub.room] = members
	}
	members[client.id] = client
	client.rooms[sub.room] = struct{}{}
}

// handleBroadcast sends a room message to every member except the excluded one
func (h *Hub) handleBroadcast(msg BroadcastMessage) {
	var clientsToRemove []*Client

	for id, client := range h.rooms[msg.Room] {
		if msg.Exclude != "" && id == msg.Exclude {
			continue
		}
		if !h.trySend(client, msg.Payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}

	h.removeFailedClients(clientsToRemove)
}

func (h *Hub) handleDirect(msg DirectMessage) {
	client, ok := h.clients[msg.ClientID]
	if !ok {
		return
	}
	if !h.trySend(client, msg.Payload) {
		h.removeFailedClients([]*Client{client})
	}
}

// trySend queues a payload without blocking the event loop.
func (h *Hub) trySend(client *Client, payload []byte) bool {
	if client.closed {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// removeFailedClients drops clients whose send buffer is full.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	for _, client := range clientsToRemove {
		h.removeClient(client, "removed due to full send buffer")
	}
}

// removeClient forgets the client, leaves all its rooms, and closes its send
// channel so the write pump terminates.
func (h *Hub) removeClient(client *Client, reason string) {
	if client == nil {
		return
	}

	h.mutex.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mutex.Unlock()
		return
	}

	delete(h.clients, client.id)
	for room := range client.rooms {
		members := h.rooms[room]
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	close(client.send)
	log.Printf("Client %s from %s %s. Total clients: %d", client.id, client.addr, reason, clientCount)
}

// shutdownClients closes all active client connections and their send channels
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
		h.removeClient(client, "closed for shutdown")
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
