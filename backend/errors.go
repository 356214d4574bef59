package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the definitive-absence signal: the API answered 404.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized means the API rejected the bearer credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict means a create collided with an existing resource,
	// e.g. a taken custom alias.
	ErrConflict = errors.New("resource conflict")
	// ErrTransport wraps network-level failures (DNS, connect, deadline).
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse means the API answered 2xx with a body this
	// client could not decode.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError carries any non-2xx status that has no dedicated sentinel,
// 5xx included.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Temporary reports whether the status suggests retrying could help.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}
