// Package codec converts cache values to and from the payload stored in the
// backend. JSON is the default: it keeps entries readable by other clients of
// the same keys. The binary codecs trade that for size and speed.
package codec

// Codec encodes/decodes values V to []byte for storage.
// Decode must accept every payload Encode produced for the same V.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
