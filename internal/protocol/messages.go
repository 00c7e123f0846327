// Package protocol defines the JSON events exchanged between drawing
// clients and the relay, and decodes inbound frames into a closed set of
// typed variants.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Event names used on the wire.
const (
	EventJoinRoom     = "joinRoom"
	EventWord         = "word"
	EventStroke       = "stroke"
	EventClear        = "clear"
	EventGuess        = "guess"
	EventCorrectGuess = "correctGuess"
	EventError        = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPayload is the data of joinRoom and clear.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// GuessPayload is the data of an inbound guess.
type GuessPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// StrokePayload is one line segment. W and H carry the emitting canvas
// size so receivers can rescale.
type StrokePayload struct {
	RoomID string   `json:"roomId"`
	X0     float64  `json:"x0"`
	Y0     float64  `json:"y0"`
	X1     float64  `json:"x1"`
	Y1     float64  `json:"y1"`
	W      *float64 `json:"w,omitempty"`
	H      *float64 `json:"h,omitempty"`
}

// WordPayload announces a room's secret word.
type WordPayload struct {
	Word string `json:"word"`
}

// TextPayload carries guess text for guess and correctGuess.
type TextPayload struct {
	Text string `json:"text"`
}

// ErrorPayload is sent to a client whose frame could not be handled.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Inbound is one decoded client event. It is implemented only by
// JoinRoom, Stroke, Clear and Guess.
type Inbound interface {
	Room() string
	inbound()
}

// JoinRoom subscribes the sender to a room.
type JoinRoom struct {
	RoomID string
}

// Stroke is a line segment relayed verbatim. Raw holds the original data.
type Stroke struct {
	RoomID string
	Raw    json.RawMessage
}

// Clear wipes every canvas in the room.
type Clear struct {
	RoomID string
}

// Guess is a guess attempt for the room's word.
type Guess struct {
	RoomID string
	Text   string
}

func (j JoinRoom) Room() string { return j.RoomID }
func (s Stroke) Room() string   { return s.RoomID }
func (c Clear) Room() string    { return c.RoomID }
func (g Guess) Room() string    { return g.RoomID }

func (JoinRoom) inbound() {}
func (Stroke) inbound()   {}
func (Clear) inbound()    {}
func (Guess) inbound()    {}

// Decode parses a client frame. Errors are *Error values with
// ErrorInvalidMessage, ErrorUnknownEvent or ErrorBadRequest codes.
func Decode(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, WrapError(ErrorInvalidMessage, "frame is not a JSON event envelope", err)
	}
	if env.Event == "" {
		return nil, NewError(ErrorInvalidMessage, "missing event name")
	}

	switch env.Event {
	case EventJoinRoom:
		roomID, err := decodeRoomID(env.Event, env.Data)
		if err != nil {
			return nil, err
		}
		return JoinRoom{RoomID: roomID}, nil

	case EventClear:
		roomID, err := decodeRoomID(env.Event, env.Data)
		if err != nil {
			return nil, err
		}
		return Clear{RoomID: roomID}, nil

	case EventStroke:
		roomID, err := decodeRoomID(env.Event, env.Data)
		if err != nil {
			return nil, err
		}
		return Stroke{RoomID: roomID, Raw: env.Data}, nil

	case EventGuess:
		var data struct {
			RoomID *string `json:"roomId"`
			Text   *string `json:"text"`
		}
		if err := decodeObject(env.Event, env.Data, &data); err != nil {
			return nil, err
		}
		if data.RoomID == nil {
			return nil, NewError(ErrorBadRequest, "guess: missing roomId")
		}
		if data.Text == nil {
			return nil, NewError(ErrorBadRequest, "guess: missing text")
		}
		return Guess{RoomID: *data.RoomID, Text: *data.Text}, nil

	default:
		return nil, NewError(ErrorUnknownEvent, fmt.Sprintf("unknown event %q", env.Event))
	}
}

func decodeRoomID(event string, data json.RawMessage) (string, error) {
	var payload struct {
		RoomID *string `json:"roomId"`
	}
	if err := decodeObject(event, data, &payload); err != nil {
		return "", err
	}
	if payload.RoomID == nil {
		return "", NewError(ErrorBadRequest, event+": missing roomId")
	}
	return *payload.RoomID, nil
}

func decodeObject(event string, data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return NewError(ErrorBadRequest, event+": missing data")
	}
	if data[0] != '{' {
		return NewError(ErrorBadRequest, event+": data must be an object")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return WrapError(ErrorBadRequest, event+": malformed payload", err)
	}
	return nil
}

func encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// EncodeWord builds a word event.
func EncodeWord(word string) ([]byte, error) {
	return encode(EventWord, WordPayload{Word: word})
}

// EncodeStroke re-wraps the original stroke data without touching it.
func EncodeStroke(raw json.RawMessage) ([]byte, error) {
	return json.Marshal(Envelope{Event: EventStroke, Data: raw})
}

// EncodeClear builds a clear event, which carries no data.
func EncodeClear() ([]byte, error) {
	return encode(EventClear, nil)
}

// EncodeGuess builds the chat relay of a wrong guess.
func EncodeGuess(text string) ([]byte, error) {
	return encode(EventGuess, TextPayload{Text: text})
}

// EncodeCorrectGuess builds the room-wide correct guess notice.
func EncodeCorrectGuess(text string) ([]byte, error) {
	return encode(EventCorrectGuess, TextPayload{Text: text})
}

// EncodeError builds an error event for err. Errors that are not protocol
// errors are reported with the unknown code.
func EncodeError(err error) ([]byte, error) {
	payload := ErrorPayload{Code: CodeOf(err).String(), Message: err.Error()}
	return encode(EventError, payload)
}
