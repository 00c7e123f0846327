package server

import (
	"testing"
	"time"
)

type discardHandler struct{}

func (discardHandler) Handle(string, []byte) {}

func (discardHandler) Reject(string, error) {}

func startTestHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	t.Cleanup(func() {
		if err := hub.Shutdown(time.Second); err != nil {
			t.Errorf("Hub shutdown failed: %v", err)
		}
	})
	return hub
}

// newOfflineClient registers a client without a socket so tests can read
// its send channel directly.
func newOfflineClient(t *testing.T, hub *Hub, addr string) *Client {
	t.Helper()

	client := NewClient(nil, hub, discardHandler{}, addr, *NewConfig())
	hub.Register(client)
	return client
}

func expectPayload(t *testing.T, client *Client, want string) {
	t.Helper()

	select {
	case got, ok := <-client.GetSendChan():
		if !ok {
			t.Fatalf("Send channel of %s closed", client.addr)
		}
		if string(got) != want {
			t.Errorf("Client %s expected %q, got %q", client.addr, want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("Client %s did not receive %q", client.addr, want)
	}
}

func expectNoPayload(t *testing.T, client *Client) {
	t.Helper()

	select {
	case got := <-client.GetSendChan():
		t.Errorf("Client %s unexpectedly received %q", client.addr, got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewClientAssignsUniqueIDs(t *testing.T) {
	hub := NewHub()

	a := NewClient(nil, hub, discardHandler{}, "127.0.0.1:1", *NewConfig())
	b := NewClient(nil, hub, discardHandler{}, "127.0.0.1:2", *NewConfig())

	if a.ID() == "" || b.ID() == "" {
		t.Fatal("Client ID is empty")
	}
	if a.ID() == b.ID() {
		t.Errorf("Expected distinct IDs, both are %q", a.ID())
	}
}

func TestHubPublishExcludesSender(t *testing.T) {
	hub := startTestHub(t)

	a := newOfflineClient(t, hub, "a")
	b := newOfflineClient(t, hub, "b")
	c := newOfflineClient(t, hub, "c")
	for _, client := range []*Client{a, b, c} {
		hub.Subscribe(client.ID(), "room")
	}

	hub.Publish("room", []byte("stroke"), a.ID())

	expectPayload(t, b, "stroke")
	expectPayload(t, c, "stroke")
	expectNoPayload(t, a)
}

func TestHubPublishWholeRoom(t *testing.T) {
	hub := startTestHub(t)

	a := newOfflineClient(t, hub, "a")
	b := newOfflineClient(t, hub, "b")
	hub.Subscribe(a.ID(), "room")
	hub.Subscribe(b.ID(), "room")

	hub.Publish("room", []byte("clear"), "")

	expectPayload(t, a, "clear")
	expectPayload(t, b, "clear")
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := startTestHub(t)

	a := newOfflineClient(t, hub, "a")
	b := newOfflineClient(t, hub, "b")
	hub.Subscribe(a.ID(), "r1")
	hub.Subscribe(b.ID(), "r2")

	hub.Publish("r1", []byte("only-r1"), "")

	expectPayload(t, a, "only-r1")
	expectNoPayload(t, b)
}

func TestHubSendTargetsOneClient(t *testing.T) {
	hub := startTestHub(t)

	a := newOfflineClient(t, hub, "a")
	b := newOfflineClient(t, hub, "b")
	hub.Subscribe(a.ID(), "room")
	hub.Subscribe(b.ID(), "room")

	hub.Send(a.ID(), []byte("word"))
	hub.Send("unknown-connection", []byte("lost"))

	expectPayload(t, a, "word")
	expectNoPayload(t, b)
}

func TestHubPreservesPublishOrder(t *testing.T) {
	hub := startTestHub(t)

	a := newOfflineClient(t, hub, "a")
	b := newOfflineClient(t, hub, "b")
	hub.Subscribe(a.ID(), "room")
	hub.Subscribe(b.ID(), "room")

	want := []string{"1", "2", "3", "4", "5"}
	for _, p := range want {
		hub.Publish("room", []byte(p), a.ID())
	}

	for _, p := range want {
		expectPayload(t, b, p)
	}
}

func TestHubUnregisterLeavesRooms(t *testing.T) {
	hub := startTestHub(t)

	a := newOfflineClient(t, hub, "a")
	b := newOfflineClient(t, hub, "b")
	hub.Subscribe(a.ID(), "room")
	hub.Subscribe(b.ID(), "room")

	hub.Unregister(a)
	// Unregister is processed before this publish by the same caller.
	hub.Publish("room", []byte("after-leave"), "")
	expectPayload(t, b, "after-leave")

	if _, ok := <-a.GetSendChan(); ok {
		t.Error("Expected send channel of unregistered client to be closed")
	}
	if got := hub.RoomSize("room"); got != 1 {
		t.Errorf("Expected 1 member left, got %d", got)
	}
	if got := hub.ClientCount(); got != 1 {
		t.Errorf("Expected 1 client left, got %d", got)
	}

	hub.Unregister(b)
	hub.Send(b.ID(), []byte("sync"))
	if got := hub.RoomSize("room"); got != 0 {
		t.Errorf("Expected empty room to be dropped, got %d members", got)
	}
}

func TestHubSubscribeUnknownClientIsIgnored(t *testing.T) {
	hub := startTestHub(t)

	hub.Subscribe("ghost", "room")
	hub.Send("ghost", []byte("sync"))

	if got := hub.RoomSize("room"); got != 0 {
		t.Errorf("Expected no members, got %d", got)
	}
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	hub := startTestHub(t)

	slow := newOfflineClient(t, hub, "slow")
	hub.Subscribe(slow.ID(), "room")

	for i := 0; i < sendBufferSize+1; i++ {
		hub.Publish("room", []byte("x"), "")
	}
	hub.Send(slow.ID(), []byte("sync"))

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("Expected slow client to be removed, %d clients remain", got)
	}
	if got := hub.RoomSize("room"); got != 0 {
		t.Errorf("Expected slow client to leave the room, got %d members", got)
	}
}

func TestHubCallsReturnAfterShutdown(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	if err := hub.Shutdown(time.Second); err != nil {
		t.Fatalf("Hub shutdown failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		hub.Subscribe("a", "room")
		hub.Publish("room", []byte("x"), "")
		hub.Send("a", []byte("x"))
		hub.Register(NewClient(nil, hub, discardHandler{}, "late", *NewConfig()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Hub calls blocked after shutdown")
	}
}
