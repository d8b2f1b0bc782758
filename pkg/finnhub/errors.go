package finnhub

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the request URL could not be built.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNoDataReturned is returned when the server responded successfully
	// but with an empty body.
	ErrNoDataReturned = errors.New("no data returned")
	// ErrTransport wraps network failures.
	ErrTransport = errors.New("transport error")
	// ErrDecode is returned when the body does not match the expected shape.
	ErrDecode = errors.New("decode error")
)

// StatusError is returned when finnhub responds with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: bad status code %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is makes the status error match ErrTransport.
func (e *StatusError) Is(target error) bool { return target == ErrTransport }
