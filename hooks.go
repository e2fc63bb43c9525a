package aimcache

// Hooks are lightweight callbacks for failures the cache swallows and for read
// outcomes. Implementations MUST be cheap and non-blocking (wrap slow sinks
// in hooks/async). The cache calls them on hot paths.
//
// op ∈ {"get", "put", "has", "destroy", "pop", "remember", "multiget", "multiput"}
type Hooks interface {
	// A key-accepting operation received an invalid (empty) key.
	InvalidKey(op string)

	// A backend call failed: transport error, timeout, or not connected.
	BackendError(op, key string, err error)

	// A stored payload could not be decoded, or a value could not be encoded.
	CodecError(op, key string, err error)

	// A Remember fallback returned an error or panicked; the result is absent.
	FallbackFailed(key string, err error)

	// The EXPIRE following a MultiPut failed; fields were written without TTL.
	ExpireFailed(key string, err error)

	// Read outcomes. MultiGet reports one per requested field.
	Hit(op, key string)
	Miss(op, key string)

	// Connection lifecycle: event ∈ {"connect", "reconnecting", "ready", "error"}.
	Connection(event, addr string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) InvalidKey(string)                  {}
func (NopHooks) BackendError(string, string, error) {}
func (NopHooks) CodecError(string, string, error)   {}
func (NopHooks) FallbackFailed(string, error)       {}
func (NopHooks) ExpireFailed(string, error)         {}
func (NopHooks) Hit(string, string)                 {}
func (NopHooks) Miss(string, string)                {}
func (NopHooks) Connection(string, string, error)   {}
