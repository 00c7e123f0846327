package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode categorises protocol errors reported back to a sender.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	ErrorInvalidMessage
	ErrorBadRequest
	ErrorUnknownEvent
	ErrorRateLimited
)

// String returns the wire representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorInvalidMessage:
		return "invalid_message"
	case ErrorBadRequest:
		return "bad_request"
	case ErrorUnknownEvent:
		return "unknown_event"
	case ErrorRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// ParseErrorCode converts a wire error code to an ErrorCode.
func ParseErrorCode(code string) ErrorCode {
	switch code {
	case "invalid_message":
		return ErrorInvalidMessage
	case "bad_request":
		return ErrorBadRequest
	case "unknown_event":
		return ErrorUnknownEvent
	case "rate_limited":
		return ErrorRateLimited
	default:
		return ErrorUnknown
	}
}

// Error is a structured protocol error with a code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a protocol error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidMessage = &Error{Code: ErrorInvalidMessage}
	ErrBadRequest     = &Error{Code: ErrorBadRequest}
	ErrUnknownEvent   = &Error{Code: ErrorUnknownEvent}
	ErrRateLimited    = &Error{Code: ErrorRateLimited}
)

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps err with a code and message.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Wrapped: err}
}

// CodeOf extracts the ErrorCode from err, or ErrorUnknown.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrorUnknown
}
