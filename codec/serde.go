package codec

import "github.com/unkn0wn-root/gpucache/serde"

// Serde encodes V with package serde: compact and deterministic, but only
// readable by the same build on the same machine. V must be deserializable
// by serde; trailing bytes are an error.
type Serde[V any] struct{}

func (Serde[V]) Encode(v V) ([]byte, error) { return serde.Bytes(v), nil }
func (Serde[V]) Decode(b []byte) (V, error) { return serde.Decode[V](b) }
