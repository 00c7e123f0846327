package sketchclient

import (
	"encoding/json"

	"github.com/Tyrowin/sketchrelay/internal/protocol"
)

// dispatcher routes server events to registered callbacks.
type dispatcher struct {
	onWord         func(string)
	onStroke       func(Stroke)
	onClear        func()
	onGuess        func(string)
	onCorrectGuess func(string)
	onError        func(error)
}

func (d *dispatcher) SetOnWord(fn func(string))         { d.onWord = fn }
func (d *dispatcher) SetOnStroke(fn func(Stroke))       { d.onStroke = fn }
func (d *dispatcher) SetOnClear(fn func())              { d.onClear = fn }
func (d *dispatcher) SetOnGuess(fn func(string))        { d.onGuess = fn }
func (d *dispatcher) SetOnCorrectGuess(fn func(string)) { d.onCorrectGuess = fn }
func (d *dispatcher) SetOnError(fn func(error))         { d.onError = fn }

// Dispatch decodes one envelope and invokes the matching callback.
func (d *dispatcher) Dispatch(env protocol.Envelope) {
	switch env.Event {
	case protocol.EventWord:
		if d.onWord == nil {
			return
		}
		var p protocol.WordPayload
		if err := unmarshalData(env, &p); err != nil {
			d.fireError(err)
			return
		}
		d.onWord(p.Word)

	case protocol.EventStroke:
		if d.onStroke == nil {
			return
		}
		var p Stroke
		if err := unmarshalData(env, &p); err != nil {
			d.fireError(err)
			return
		}
		d.onStroke(p)

	case protocol.EventClear:
		if d.onClear != nil {
			d.onClear()
		}

	case protocol.EventGuess, protocol.EventCorrectGuess:
		fn := d.onGuess
		if env.Event == protocol.EventCorrectGuess {
			fn = d.onCorrectGuess
		}
		if fn == nil {
			return
		}
		var p protocol.TextPayload
		if err := unmarshalData(env, &p); err != nil {
			d.fireError(err)
			return
		}
		fn(p.Text)

	case protocol.EventError:
		var p protocol.ErrorPayload
		if err := unmarshalData(env, &p); err != nil {
			d.fireError(err)
			return
		}
		d.fireError(protocol.NewError(protocol.ParseErrorCode(p.Code), p.Message))
	}
}

func (d *dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}

func unmarshalData(env protocol.Envelope, v any) error {
	if err := json.Unmarshal(env.Data, v); err != nil {
		return protocol.WrapError(protocol.ErrorInvalidMessage, "failed to decode "+env.Event+" event", err)
	}
	return nil
}
