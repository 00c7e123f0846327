package sketchclient

import "github.com/Tyrowin/sketchrelay/internal/protocol"

// Stroke is one line segment drawn on a room's canvas. W and H carry the
// sender's canvas size so receivers can rescale; both are optional.
type Stroke = protocol.StrokePayload

// Error is an error reported by the relay or raised while decoding one of
// its events. Compare with errors.Is against the Err values below.
type Error = protocol.Error

// ErrorCode identifies the kind of Error.
type ErrorCode = protocol.ErrorCode

// Error codes carried by Error.
const (
	ErrorUnknown        = protocol.ErrorUnknown
	ErrorInvalidMessage = protocol.ErrorInvalidMessage
	ErrorBadRequest     = protocol.ErrorBadRequest
	ErrorUnknownEvent   = protocol.ErrorUnknownEvent
	ErrorRateLimited    = protocol.ErrorRateLimited
)

// Sentinels for errors.Is comparisons.
var (
	// ErrInvalidMessage matches frames that could not be decoded.
	ErrInvalidMessage = protocol.ErrInvalidMessage
	// ErrBadRequest matches events with a missing or wrong-typed field.
	ErrBadRequest = protocol.ErrBadRequest
	// ErrUnknownEvent matches events the relay does not recognise.
	ErrUnknownEvent = protocol.ErrUnknownEvent
	// ErrRateLimited matches the relay discarding events over the rate limit.
	ErrRateLimited = protocol.ErrRateLimited
)
