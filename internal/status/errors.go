package status

import (
	"errors"
	"fmt"
)

var ErrNegativeCursor = errors.New("cursor must be non-negative")

// TransportError wraps connection, DNS and timeout failures.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("status api request failed: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// RemoteStatusError reports a non-200 answer from the API.
type RemoteStatusError struct {
	Code int
	// Body is a short prefix of the response body, for logs only.
	Body string
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("status api answered with http %d", e.Code)
}

// DecodeError reports a body that is not a JSON object.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("status api response is not valid json: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// SchemaError reports a decoded snapshot of the wrong shape.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid status api response: %s: %s", e.Field, e.Reason)
}

// UnknownStatusError reports a homework status outside the verdict table.
type UnknownStatusError struct {
	Code string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown homework status %q", e.Code)
}
