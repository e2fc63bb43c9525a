package codec

import (
	"errors"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var errNoCtor = errors.New("codec: protobuf codec without message constructor")

// Protobuf stores messages in the binary wire format.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.User { return &mypb.User{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errNoCtor
	}
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// ProtoJSON stores messages as canonical protobuf JSON, keeping entries
// textual like the JSON codec.
type ProtoJSON[T proto.Message] struct {
	new func() T
}

func NewProtoJSON[T proto.Message](ctor func() T) ProtoJSON[T] {
	return ProtoJSON[T]{new: ctor}
}

func (c ProtoJSON[T]) Encode(v T) ([]byte, error) {
	return protojson.Marshal(v)
}

func (c ProtoJSON[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errNoCtor
	}
	m := c.new()
	err := protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(b, m)
	return m, err
}
