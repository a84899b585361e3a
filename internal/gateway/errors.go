package gateway

import (
	"errors"
	"fmt"
)

// ClientError marks a malformed or unknown command. It is reported to the
// direct caller only; it causes no state change and no broadcast.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func clientErrorf(format string, args ...any) error {
	return &ClientError{Message: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err is a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// ResolutionError is returned when both the primary and fallback resolution
// paths for a song identifier are exhausted.
type ResolutionError struct {
	ID  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve song %s: %v", e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
