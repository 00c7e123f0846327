// Package sketchclient is a Go client for the sketch relay. It joins a
// room, sends strokes, clears, and guesses, and dispatches the events the
// relay sends back to registered callbacks.
package sketchclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/coder/websocket"

	"github.com/Tyrowin/sketchrelay/internal/protocol"
	"github.com/Tyrowin/sketchrelay/pkg/sketchclient/internal"
)

var (
	// ErrNotConnected is returned by send operations before Connect or after Close.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by a second Connect.
	ErrAlreadyConnected = errors.New("already connected")
)

// Client is one connection to the relay. Register callbacks before Connect.
type Client struct {
	cfg        Config
	writeCh    chan protocol.Envelope
	dispatcher dispatcher

	mu         sync.Mutex
	conn       *internal.Conn
	connected  bool
	connecting bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewClient constructs a client with the provided config.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		writeCh: make(chan protocol.Envelope, 64),
	}
}

// OnWord registers a callback for the room's secret word.
func (c *Client) OnWord(fn func(word string)) { c.dispatcher.SetOnWord(fn) }

// OnStroke registers a callback for strokes drawn by other members.
func (c *Client) OnStroke(fn func(Stroke)) { c.dispatcher.SetOnStroke(fn) }

// OnClear registers a callback for canvas clears.
func (c *Client) OnClear(fn func()) { c.dispatcher.SetOnClear(fn) }

// OnGuess registers a callback for wrong guesses made by other members.
func (c *Client) OnGuess(fn func(text string)) { c.dispatcher.SetOnGuess(fn) }

// OnCorrectGuess registers a callback for correct guesses in the room.
func (c *Client) OnCorrectGuess(fn func(text string)) { c.dispatcher.SetOnCorrectGuess(fn) }

// OnError registers a callback for server-reported and transport errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// Connect dials the relay and starts the read and write loops. A second
// call, including one made while the first is still dialing, returns
// ErrAlreadyConnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected || c.connecting {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.connecting = true
	c.mu.Unlock()

	ws, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.connecting = false
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.conn = internal.NewConn(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
	c.cancel = cancel
	c.connected = true
	c.done = make(chan struct{})

	go c.readLoop(runCtx, c.conn, c.done)
	go c.writeLoop(runCtx, c.conn)
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	if c.cfg.URL == "" {
		return nil, errors.New("empty URL")
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, err
	}

	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	var opts *websocket.DialOptions
	if c.cfg.Origin != "" {
		opts = &websocket.DialOptions{HTTPHeader: http.Header{"Origin": []string{c.cfg.Origin}}}
	}

	ws, _, err := websocket.Dial(ctx, u.String(), opts)
	return ws, err
}

// JoinRoom subscribes to a room. The room's word arrives via OnWord.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	return c.send(ctx, protocol.EventJoinRoom, protocol.RoomPayload{RoomID: roomID})
}

// Stroke sends one line segment to the other members of its room.
func (c *Client) Stroke(ctx context.Context, stroke Stroke) error {
	return c.send(ctx, protocol.EventStroke, stroke)
}

// Clear wipes every canvas in the room, including this client's.
func (c *Client) Clear(ctx context.Context, roomID string) error {
	return c.send(ctx, protocol.EventClear, protocol.RoomPayload{RoomID: roomID})
}

// Guess submits a guess for the room's word.
func (c *Client) Guess(ctx context.Context, roomID, text string) error {
	return c.send(ctx, protocol.EventGuess, protocol.GuessPayload{RoomID: roomID, Text: text})
}

// Done is closed when the read loop exits.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Close shuts down the client and closes the WebSocket.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.connected = false
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *Client) send(ctx context.Context, event string, payload any) error {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return protocol.WrapError(protocol.ErrorInvalidMessage, "failed to encode "+event, err)
	}

	select {
	case c.writeCh <- protocol.Envelope{Event: event, Data: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readLoop(ctx context.Context, conn *internal.Conn, done chan struct{}) {
	defer close(done)
	for {
		var env protocol.Envelope
		if err := conn.Read(ctx, &env); err != nil {
			if !isExpectedDisconnect(ctx, err) {
				c.dispatcher.fireError(err)
			}
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			return
		}
		c.dispatcher.Dispatch(env)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn) {
	for {
		select {
		case env := <-c.writeCh:
			if err := conn.Write(ctx, env); err != nil {
				if !isExpectedDisconnect(ctx, err) {
					c.dispatcher.fireError(err)
				}
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
