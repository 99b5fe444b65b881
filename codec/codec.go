// Package codec converts cached values to and from blob payloads.
package codec

import "errors"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Funcs builds a Codec from a pair of functions. DecodeFunc is the cache-hit
// handler: an error from it makes the cached blob count as a miss.
type Funcs[V any] struct {
	EncodeFunc func(V) ([]byte, error)
	DecodeFunc func([]byte) (V, error)
}

func (f Funcs[V]) Encode(v V) ([]byte, error) { return f.EncodeFunc(v) }
func (f Funcs[V]) Decode(b []byte) (V, error) { return f.DecodeFunc(b) }

// Checked runs Check on every decoded value, so a blob that parses but holds
// an unusable value is rejected like a corrupt one.
type Checked[V any] struct {
	Inner Codec[V]
	Check func(V) error
}

var ErrCheck = errors.New("codec: decoded value rejected")

func (c Checked[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Checked[V]) Decode(b []byte) (V, error) {
	v, err := c.Inner.Decode(b)
	if err != nil {
		return v, err
	}
	if err := c.Check(v); err != nil {
		var zero V
		return zero, errors.Join(ErrCheck, err)
	}
	return v, nil
}
