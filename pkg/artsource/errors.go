package artsource

import (
	"context"
	"errors"
	"net"
)

// ErrEmptyPayload is returned when the origin answered successfully but without a photo.
var ErrEmptyPayload = errors.New("origin returned no photo")

// ClassifiedError is an error that knows whether retrying soon is worthwhile.
type ClassifiedError interface {
	error
	Transient() bool
}

// IsTransient reports whether err is worth a prompt retry: network failures and
// server errors are, everything else waits for the next re-check.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ce ClassifiedError
	if errors.As(err, &ce) {
		return ce.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
