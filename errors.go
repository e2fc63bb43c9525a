package aimcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is reported when an operation runs before Run or after Close.
	ErrNotConnected = errors.New("aimcache: backend not connected")

	// ErrNoValue may be returned by a Compute fallback to say "nothing to
	// cache" without it being counted as a failure.
	ErrNoValue = errors.New("aimcache: fallback produced no value")

	// ErrFallbackPanic wraps a panic recovered from a Compute fallback.
	ErrFallbackPanic = errors.New("aimcache: fallback panicked")
)

// TransportError is returned by MultiGet when the backend call failed.
// It is distinct from an empty result: the batch state is unknown.
type TransportError struct {
	Op  string
	Key string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("aimcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
