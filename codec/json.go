package codec

import "encoding/json"

// JSON serializes values with encoding/json. Human-readable backing files,
// at the cost of size and speed; handy when the cached value should be
// inspectable on disk.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
