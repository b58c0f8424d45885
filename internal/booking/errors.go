package booking

import (
	"context"
	"errors"
	"fmt"
)

// ProviderError wraps a failure from the calendar or the record sink.
type ProviderError struct {
	// Op names the external call, e.g. "calendar.query_busy".
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time.
func (e *ProviderError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// FieldError reports a missing or malformed request field.
type FieldError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// BodyError reports a request body that is not a JSON object.
type BodyError struct {
	Err error
}

// Error implements the error interface.
func (e *BodyError) Error() string {
	return "invalid request body: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *BodyError) Unwrap() error {
	return e.Err
}

func wrapProvider(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Op: op, Err: err}
}
