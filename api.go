package aimcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/aimcache/backend"
	"github.com/unkn0wn-root/aimcache/codec"
)

// Cache is the cache-aside API over one backend connection.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
//
// A ttl <= 0 means "no expiry" for Put and MultiPut, and "do not persist"
// for Remember.
type Cache[V any] interface {
	// Run connects to the backend described by Options.Config. It is a no-op
	// when the cache is already connected. With Options.Backend supplied it
	// only reattaches that backend after a Close.
	Run(ctx context.Context) error
	// Close detaches the backend and closes it only if Run dialed it.
	Close(ctx context.Context) error
	Config() Config

	// Single
	Get(ctx context.Context, key string) (V, bool)
	Put(ctx context.Context, key string, value V, ttl time.Duration) bool
	Has(ctx context.Context, key string) bool
	Destroy(ctx context.Context, key string)
	Pop(ctx context.Context, key string) (V, bool)

	// Compute-on-miss
	Remember(ctx context.Context, key string, ttl time.Duration, fallback Fallback[V]) (V, bool)

	// Hash fields under one key (one expiry for the whole key)
	MultiGet(ctx context.Context, key string, fields []string) ([]HashField[V], error)
	MultiPut(ctx context.Context, key string, fields map[string]V, ttl time.Duration) bool
}

// HashField is one slot of a MultiGet result, aligned with the requested fields.
type HashField[V any] struct {
	Name  string
	Value V
	Found bool
}

// FieldMap collects the found slots of a MultiGet result by field name.
func FieldMap[V any](fields []HashField[V]) map[string]V {
	out := make(map[string]V, len(fields))
	for _, f := range fields {
		if f.Found {
			out[f.Name] = f.Value
		}
	}
	return out
}

// Options configure a cache. Everything is optional.
type Options[V any] struct {
	// Config is resolved against the environment (see Config.Resolve) and
	// used by Run.
	Config Config
	// Env overrides the environment lookup used to resolve Config.
	Env func(string) (string, bool)

	// Backend is an already-connected backend, typically shared by several
	// caches. The cache never closes a backend it did not dial.
	Backend backend.Backend

	Codec     codec.Codec[V] // nil => JSON
	Logger    Logger        // nil => NopLogger
	Hooks     Hooks         // nil => NopHooks
	OpTimeout time.Duration // bound for every backend call; 0 => 2s
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
