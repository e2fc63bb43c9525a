package codec

// Bytes is an identity codec for []byte values. Useful when callers already
// hold a serialized payload and only want the cache semantics.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String stores Go strings verbatim (no JSON quoting). Entries written this
// way are plain redis strings, which is what hash fields written by other
// tools usually are.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
