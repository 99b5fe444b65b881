package codec

import "encoding/json"

// JSON is mainly useful for inspecting blobs by hand; map keys are sorted by
// encoding/json, so output is stable.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
