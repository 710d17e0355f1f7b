package clinicapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed backend call. Everything the backend can do
// wrong collapses into one of these; callers branch on kind, not on message
// text.
type ErrorKind string

const (
	ErrTransport   ErrorKind = "transport"    // request never completed
	ErrStatus      ErrorKind = "status"       // non-2xx response
	ErrContentType ErrorKind = "content_type" // response is not JSON
	ErrDecode      ErrorKind = "decode"       // body is not valid JSON
	ErrShape       ErrorKind = "shape"        // JSON is neither array nor {count, results}
)

// Error is the only error type the client returns for failed calls.
type Error struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int // set for ErrStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrStatus:
		return fmt.Sprintf("clinicapi: %s returned status %d", e.Endpoint, e.StatusCode)
	default:
		return fmt.Sprintf("clinicapi: %s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the error kind when err is a client error, or "" otherwise.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
