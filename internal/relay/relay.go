// Package relay applies the drawing game's event contracts: it decodes
// client frames, consults the room registry, and fans events out to room
// members through a GroupChannel.
package relay

import (
	"errors"
	"log"

	"github.com/Tyrowin/sketchrelay/internal/protocol"
	"github.com/Tyrowin/sketchrelay/internal/room"
)

// GroupChannel is the transport capability the relay needs: room
// subscription plus room-scoped and direct delivery. Implementations must
// deliver payloads from a single caller in call order.
type GroupChannel interface {
	// Subscribe adds the connection to the room's group.
	Subscribe(connID, roomID string)
	// Publish delivers payload to every member of the room except
	// excludeConnID. An empty excludeConnID targets the whole room.
	Publish(roomID string, payload []byte, excludeConnID string)
	// Send delivers payload to a single connection.
	Send(connID string, payload []byte)
}

// Relay routes inbound events for all rooms.
type Relay struct {
	rooms  *room.Registry
	groups GroupChannel
}

// New creates a Relay backed by the given registry and group channel.
func New(rooms *room.Registry, groups GroupChannel) *Relay {
	return &Relay{rooms: rooms, groups: groups}
}

// Handle decodes and dispatches one frame received from connID. Frames
// that cannot be decoded are logged and answered with an error event to
// the sender only.
func (r *Relay) Handle(connID string, raw []byte) {
	in, err := protocol.Decode(raw)
	if err != nil {
		log.Printf("Discarding malformed frame from %s: %v", connID, err)
		r.Reject(connID, err)
		return
	}

	if err := r.Dispatch(connID, in); err != nil {
		log.Printf("Error handling %T from %s: %v", in, connID, err)
		r.Reject(connID, err)
	}
}

// Reject reports err to connID as an error event.
func (r *Relay) Reject(connID string, err error) {
	payload, encErr := protocol.EncodeError(err)
	if encErr != nil {
		log.Printf("Error encoding error event for %s: %v", connID, encErr)
		return
	}
	r.groups.Send(connID, payload)
}

// Dispatch applies a decoded event.
func (r *Relay) Dispatch(connID string, in protocol.Inbound) error {
	switch ev := in.(type) {
	case protocol.JoinRoom:
		return r.join(connID, ev)
	case protocol.Stroke:
		return r.stroke(connID, ev)
	case protocol.Clear:
		return r.clear(ev)
	case protocol.Guess:
		return r.guess(connID, ev)
	default:
		return protocol.NewError(protocol.ErrorUnknownEvent, "unsupported event")
	}
}

func (r *Relay) join(connID string, ev protocol.JoinRoom) error {
	rm := r.rooms.EnsureRoom(ev.RoomID)
	r.groups.Subscribe(connID, ev.RoomID)

	payload, err := protocol.EncodeWord(rm.Word())
	if err != nil {
		return err
	}
	r.groups.Send(connID, payload)

	log.Printf("Connection %s joined room %q. Total rooms: %d", connID, ev.RoomID, r.rooms.Len())
	return nil
}

func (r *Relay) stroke(connID string, ev protocol.Stroke) error {
	payload, err := protocol.EncodeStroke(ev.Raw)
	if err != nil {
		return err
	}
	r.groups.Publish(ev.RoomID, payload, connID)
	return nil
}

func (r *Relay) clear(ev protocol.Clear) error {
	payload, err := protocol.EncodeClear()
	if err != nil {
		return err
	}
	r.groups.Publish(ev.RoomID, payload, "")
	return nil
}

func (r *Relay) guess(connID string, ev protocol.Guess) error {
	var publishErr error

	matched := r.rooms.Resolve(ev.RoomID, ev.Text, func(next string) {
		correct, err := protocol.EncodeCorrectGuess(ev.Text)
		if err != nil {
			publishErr = err
			return
		}
		word, err := protocol.EncodeWord(next)
		if err != nil {
			publishErr = err
			return
		}
		// Published while the room is locked so rotations cannot interleave.
		r.groups.Publish(ev.RoomID, correct, "")
		r.groups.Publish(ev.RoomID, word, "")
	})
	if publishErr != nil {
		return errors.Join(errors.New("correct guess notification failed"), publishErr)
	}

	if matched {
		log.Printf("Connection %s guessed the word in room %q", connID, ev.RoomID)
		return nil
	}

	payload, err := protocol.EncodeGuess(ev.Text)
	if err != nil {
		return err
	}
	r.groups.Publish(ev.RoomID, payload, connID)
	return nil
}
