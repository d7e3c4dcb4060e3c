package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto messages. Decode needs a concrete message to
// unmarshal into, so the codec carries a constructor.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *mypb.Report { return &mypb.Report{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
