// Package backend defines the key-value connection used by aimcache.
//
// Implementations MUST be byte-for-byte transparent: Get and HMGet must return
// exactly the []byte previously passed to Set and HSet (no prepended/appended
// metadata, no re-encoding). Expiry is owned entirely by the backend: once a
// key's TTL has passed, Get/Exists/HMGet must report it as missing even if the
// store has not physically reclaimed it yet.
//
// A Backend is shared by every cache built on it and must be safe for
// concurrent use. Callers bound each call with a context deadline; a deadline
// hit is reported as an ordinary error.
package backend

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by implementations after Close.
var ErrClosed = errors.New("backend: closed")

// Backend is the minimal set of store commands the cache relies on.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Exists reports whether key currently exists (expired keys do not).
	Exists(ctx context.Context, key string) (bool, error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// HSet writes all fields of the hash stored at key in one call.
	HSet(ctx context.Context, key string, fields map[string][]byte) error

	// HMGet returns one slot per requested field, aligned with fields.
	// Missing fields (or a missing key) yield nil slots.
	HMGet(ctx context.Context, key string, fields []string) ([][]byte, error)

	// Expire sets a TTL on the whole key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Close releases resources owned by the backend.
	Close(ctx context.Context) error
}
