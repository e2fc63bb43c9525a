// Package aimcache implements a cache-aside store over a key-value backend
// (Redis by default). Values are serialized with a pluggable Codec[V] (JSON
// unless told otherwise) and stored under caller-supplied keys, usually
// namespaced as domain:environment:id.
//
// The store never halts the caller because the backend is unavailable: reads
// degrade to "absent", writes report false. The only exception is MultiGet,
// which returns a *TransportError so that a failed batch cannot be mistaken
// for a batch of missing fields. Every swallowed failure is reported to the
// injected Hooks.
//
// Components:
//   - Backend: GET/SET/EXISTS/DEL/HSET/HMGET/EXPIRE over one shared connection
//     (backend/redis for single-node or cluster Redis, backend/ristretto in-process).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Hooks / Logger: diagnostics only, never part of control flow.
//
// Compute-on-miss:
//
//	v, ok := cache.Remember(ctx, "partnerInfo:prod:abc", 30*time.Minute,
//		aimcache.Compute(func(ctx context.Context) (Partner, error) { return fetch(ctx, "abc") }))
//
// Concurrent Remember calls for the same missing key may each run their
// fallback; there is no single-flight.
package aimcache
