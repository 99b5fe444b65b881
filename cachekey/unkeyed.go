package cachekey

import "github.com/unkn0wn-root/gpucache/serde"

// UnsafeUnkeyedValue carries a value that must not contribute to a key. It
// records as nothing. Use it only for inputs that cannot change the cached
// output, such as labels or opaque handles.
type UnsafeUnkeyedValue[T any] struct {
	v T
}

func Unkeyed[T any](v T) UnsafeUnkeyedValue[T] { return UnsafeUnkeyedValue[T]{v: v} }

func (u UnsafeUnkeyedValue[T]) Value() T { return u.v }

func (UnsafeUnkeyedValue[T]) SerializeTo(serde.Sink) {}
