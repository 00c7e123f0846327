package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeValidEvents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			name: "join room",
			raw:  `{"event":"joinRoom","data":{"roomId":"lobby"}}`,
			want: JoinRoom{RoomID: "lobby"},
		},
		{
			name: "clear",
			raw:  `{"event":"clear","data":{"roomId":"lobby"}}`,
			want: Clear{RoomID: "lobby"},
		},
		{
			name: "guess",
			raw:  `{"event":"guess","data":{"roomId":"lobby","text":"Apple"}}`,
			want: Guess{RoomID: "lobby", Text: "Apple"},
		},
		{
			name: "empty guess text is still a guess",
			raw:  `{"event":"guess","data":{"roomId":"lobby","text":""}}`,
			want: Guess{RoomID: "lobby", Text: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestDecodeStrokeKeepsRawPayload(t *testing.T) {
	raw := `{"event":"stroke","data":{"roomId":"r1","x0":1,"y0":2,"x1":"not-a-number","y1":null,"extra":true}}`

	in, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	stroke, ok := in.(Stroke)
	if !ok {
		t.Fatalf("Expected Stroke, got %T", in)
	}
	if stroke.RoomID != "r1" {
		t.Errorf("Expected room r1, got %q", stroke.RoomID)
	}

	want := `{"roomId":"r1","x0":1,"y0":2,"x1":"not-a-number","y1":null,"extra":true}`
	if string(stroke.Raw) != want {
		t.Errorf("Expected raw payload %s, got %s", want, stroke.Raw)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "not json", raw: `hello`, want: ErrInvalidMessage},
		{name: "missing event", raw: `{"data":{}}`, want: ErrInvalidMessage},
		{name: "unknown event", raw: `{"event":"vote","data":{}}`, want: ErrUnknownEvent},
		{name: "join without data", raw: `{"event":"joinRoom"}`, want: ErrBadRequest},
		{name: "join with null data", raw: `{"event":"joinRoom","data":null}`, want: ErrBadRequest},
		{name: "join with array data", raw: `{"event":"joinRoom","data":["lobby"]}`, want: ErrBadRequest},
		{name: "join missing roomId", raw: `{"event":"joinRoom","data":{}}`, want: ErrBadRequest},
		{name: "join numeric roomId", raw: `{"event":"joinRoom","data":{"roomId":7}}`, want: ErrBadRequest},
		{name: "stroke missing roomId", raw: `{"event":"stroke","data":{"x0":1}}`, want: ErrBadRequest},
		{name: "clear missing roomId", raw: `{"event":"clear","data":{}}`, want: ErrBadRequest},
		{name: "guess numeric text", raw: `{"event":"guess","data":{"roomId":"r","text":42}}`, want: ErrBadRequest},
		{name: "guess missing text", raw: `{"event":"guess","data":{"roomId":"r"}}`, want: ErrBadRequest},
		{name: "guess missing roomId", raw: `{"event":"guess","data":{"text":"cat"}}`, want: ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEncodeOutboundEvents(t *testing.T) {
	tests := []struct {
		name   string
		encode func() ([]byte, error)
		want   string
	}{
		{name: "word", encode: func() ([]byte, error) { return EncodeWord("cat") }, want: `{"event":"word","data":{"word":"cat"}}`},
		{name: "clear", encode: EncodeClear, want: `{"event":"clear"}`},
		{name: "guess", encode: func() ([]byte, error) { return EncodeGuess("dog") }, want: `{"event":"guess","data":{"text":"dog"}}`},
		{name: "correct guess", encode: func() ([]byte, error) { return EncodeCorrectGuess("CAT") }, want: `{"event":"correctGuess","data":{"text":"CAT"}}`},
		{
			name:   "stroke",
			encode: func() ([]byte, error) { return EncodeStroke(json.RawMessage(`{"roomId":"r","x0":0.5}`)) },
			want:   `{"event":"stroke","data":{"roomId":"r","x0":0.5}}`,
		},
		{
			name:   "error",
			encode: func() ([]byte, error) { return EncodeError(NewError(ErrorBadRequest, "guess: missing text")) },
			want:   `{"event":"error","data":{"code":"bad_request","message":"bad_request: guess: missing text"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.encode()
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestErrorCodesRoundTrip(t *testing.T) {
	for _, code := range []ErrorCode{ErrorInvalidMessage, ErrorBadRequest, ErrorUnknownEvent, ErrorRateLimited} {
		if got := ParseErrorCode(code.String()); got != code {
			t.Errorf("ParseErrorCode(%q) = %v, want %v", code.String(), got, code)
		}
	}
	if got := ParseErrorCode("nonsense"); got != ErrorUnknown {
		t.Errorf("Expected ErrorUnknown for unknown code, got %v", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := WrapError(ErrorBadRequest, "stroke: malformed payload", inner)

	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to be reachable with errors.Is")
	}
	if CodeOf(err) != ErrorBadRequest {
		t.Errorf("Expected bad_request code, got %v", CodeOf(err))
	}
	if CodeOf(inner) != ErrorUnknown {
		t.Errorf("Expected unknown code for plain error, got %v", CodeOf(inner))
	}
}
