package ityp

import (
	"fmt"
	"iter"

	"github.com/unkn0wn-root/gpucache/serde"
)

// Array is a sequence of exactly S elements indexed by I. The zero value
// holds S zero elements. Its length is fixed by the type, so it is
// serialized without a length prefix.
type Array[I Index, V any, S Size] struct {
	items []V // nil until written
}

func (a Array[I, V, S]) Len() I { return I(sizeOf[S]()) }

func (a Array[I, V, S]) At(i I) V {
	if a.items == nil {
		checkIndex[S](i)
		var zero V
		return zero
	}
	return a.items[i]
}

func (a *Array[I, V, S]) Ptr(i I) *V   { return &a.alloc()[i] }
func (a *Array[I, V, S]) Set(i I, v V) { a.alloc()[i] = v }

// Values returns the elements; the slice aliases the array once it has been
// written.
func (a Array[I, V, S]) Values() []V {
	if a.items == nil {
		return make([]V, sizeOf[S]())
	}
	return a.items
}

// All yields index/value pairs in index order.
func (a Array[I, V, S]) All() iter.Seq2[I, V] {
	return func(yield func(I, V) bool) {
		for i, v := range a.Values() {
			if !yield(I(i), v) {
				return
			}
		}
	}
}

func (a *Array[I, V, S]) alloc() []V {
	if a.items == nil {
		a.items = make([]V, sizeOf[S]())
	}
	return a.items
}

func (a Array[I, V, S]) SerializeTo(s serde.Sink) {
	for _, v := range a.Values() {
		serde.Serialize(s, v)
	}
}

func (a *Array[I, V, S]) DeserializeFrom(src serde.Source) error {
	items := a.alloc()
	for i := range items {
		if err := serde.Deserialize(src, &items[i]); err != nil {
			return fmt.Errorf("ityp: array element %d: %w", i, err)
		}
	}
	return nil
}

func checkIndex[S Size, I Index](i I) {
	if n := sizeOf[S](); int(i) >= n {
		panic(fmt.Sprintf("ityp: index %d out of range [0,%d)", i, n))
	}
}

// Vec is a growable sequence indexed by I.
type Vec[I Index, V any] struct {
	items []V
}

func NewVec[I Index, V any](n I) Vec[I, V] {
	return Vec[I, V]{items: make([]V, n)}
}

// VecOf wraps vs without copying.
func VecOf[I Index, V any](vs []V) Vec[I, V] { return Vec[I, V]{items: vs} }

func (v Vec[I, V]) Len() I         { return I(len(v.items)) }
func (v Vec[I, V]) Empty() bool    { return len(v.items) == 0 }
func (v Vec[I, V]) At(i I) V       { return v.items[i] }
func (v Vec[I, V]) Ptr(i I) *V     { return &v.items[i] }
func (v Vec[I, V]) Set(i I, x V)   { v.items[i] = x }
func (v Vec[I, V]) Values() []V    { return v.items }
func (v *Vec[I, V]) Append(x ...V) { v.items = append(v.items, x...) }

// Resize grows or shrinks to n, zeroing new elements.
func (v *Vec[I, V]) Resize(n I) {
	if int(n) <= len(v.items) {
		clear(v.items[n:])
		v.items = v.items[:n]
		return
	}
	v.items = append(v.items, make([]V, int(n)-len(v.items))...)
}

func (v Vec[I, V]) All() iter.Seq2[I, V] {
	return func(yield func(I, V) bool) {
		for i, x := range v.items {
			if !yield(I(i), x) {
				return
			}
		}
	}
}

func (v Vec[I, V]) SerializeTo(s serde.Sink) { serde.Serialize(s, v.items) }

func (v *Vec[I, V]) DeserializeFrom(src serde.Source) error {
	return serde.Deserialize(src, &v.items)
}
