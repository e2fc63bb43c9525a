package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned (wrapped) by Limit when a payload exceeds a bound.
var ErrTooLarge = errors.New("codec: payload too large")

// Limit wraps another codec and bounds payload sizes. A shared backend is
// written by other processes, so reads are the main thing to protect.
// A bound <= 0 disables that side of the check.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	// MaxDecode rejects stored payloads longer than this before Inner sees them.
	MaxDecode int
	// MaxEncode rejects values whose encoding is longer than this, so
	// oversized values are never written.
	MaxEncode int
}

var _ Codec[struct{}] = Limit[struct{}]{}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
