// Package codec defines the serializer contract used by persistent cached
// attributes. A backing file contains exactly one encoded value, nothing
// else; any framing or versioning is the codec's own business.
package codec

// Codec encodes/decodes values V to []byte for the backing store.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
