// Package testhelpers provides common utilities for testing the sketch relay.
//
// It starts fully wired relay servers on httptest listeners, dials gorilla
// WebSocket clients against them, and reads and asserts protocol events so
// test files stay focused on behaviour.
package testhelpers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/sketchrelay/internal/protocol"
	"github.com/Tyrowin/sketchrelay/internal/room"
	"github.com/Tyrowin/sketchrelay/internal/server"
)

// TestOrigin is the browser origin test clients present.
const TestOrigin = "http://localhost:3000"

// StartRelay starts a relay server with cfg (nil for defaults) on an
// httptest listener. Everything is torn down with t.Cleanup.
func StartRelay(t *testing.T, cfg *server.Config, opts ...room.Option) (*server.Server, *httptest.Server) {
	t.Helper()

	rooms, err := room.NewRegistry(opts...)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}

	app := server.New(cfg, rooms)
	app.Start()

	testServer := httptest.NewServer(app.Routes())
	t.Cleanup(func() {
		testServer.Close()
		if err := app.Shutdown(nil, 2*time.Second); err != nil {
			t.Logf("Relay shutdown: %v", err)
		}
	})

	return app, testServer
}

// WebSocketURL converts an httptest server URL into its /ws endpoint.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// MakeRequest creates and executes an HTTP request with optional headers,
// failing the test if it cannot be executed.
func MakeRequest(t *testing.T, method, url string, headers map[string]string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// ConnectWebSocket dials url presenting origin. It returns the HTTP status
// of a failed handshake alongside the error.
func ConnectWebSocket(url, origin string) (*websocket.Conn, int, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	status := 0
	if resp != nil {
		status = resp.StatusCode
		_ = resp.Body.Close()
	}
	return conn, status, err
}

// MustConnect dials url with TestOrigin and closes the connection on cleanup.
func MustConnect(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := ConnectWebSocket(url, TestOrigin)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendEvent writes one event frame.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal %s data: %v", event, err)
	}
	if err := conn.WriteJSON(protocol.Envelope{Event: event, Data: raw}); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// SendRaw writes a raw text frame.
func SendRaw(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("Failed to send raw frame: %v", err)
	}
}

// ReadEvent reads the next event, failing the test after timeout.
func ReadEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) protocol.Envelope {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var env protocol.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return env
}

// ExpectEvent reads the next event and checks its name.
func ExpectEvent(t *testing.T, conn *websocket.Conn, event string) protocol.Envelope {
	t.Helper()

	env := ReadEvent(t, conn, 2*time.Second)
	if env.Event != event {
		t.Fatalf("Expected %q event, got %q (data %s)", event, env.Event, env.Data)
	}
	return env
}

// ExpectNoEvent fails if an event arrives within wait. A gorilla connection
// cannot be read again after a timeout, so this must be the last read.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var env protocol.Envelope
	err := conn.ReadJSON(&env)
	if err == nil {
		t.Fatalf("Expected no event, got %q (data %s)", env.Event, env.Data)
	}

	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("Expected read timeout, got %v", err)
	}
}

// JoinRoom joins roomID and returns the word announced to the joiner.
func JoinRoom(t *testing.T, conn *websocket.Conn, roomID string) string {
	t.Helper()

	SendEvent(t, conn, protocol.EventJoinRoom, protocol.RoomPayload{RoomID: roomID})
	env := ExpectEvent(t, conn, protocol.EventWord)
	return DecodeWord(t, env)
}

// DecodeWord extracts the word from a word event.
func DecodeWord(t *testing.T, env protocol.Envelope) string {
	t.Helper()
	var p protocol.WordPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("Failed to decode word payload: %v", err)
	}
	return p.Word
}

// DecodeText extracts the text from a guess or correctGuess event.
func DecodeText(t *testing.T, env protocol.Envelope) string {
	t.Helper()
	var p protocol.TextPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("Failed to decode text payload: %v", err)
	}
	return p.Text
}
