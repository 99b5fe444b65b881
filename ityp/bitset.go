package ityp

import (
	"iter"
	"math/bits"

	"github.com/unkn0wn-root/gpucache/serde"
)

// Size fixes the length of an Array or the width of a Bitset at the type
// level. Implement it on an empty struct:
//
//	type maxBindings struct{}
//
//	func (maxBindings) Size() int { return 1000 }
type Size interface {
	Size() int
}

func sizeOf[S Size]() int {
	var s S
	return s.Size()
}

// Bitset is a set of I with the width given by S. The zero value is an empty
// set of that width, so a Bitset decodes correctly wherever it appears.
type Bitset[I Index, S Size] struct {
	words []uint64 // nil until a bit is set
}

func (b Bitset[I, S]) Len() I { return I(sizeOf[S]()) }

func (b Bitset[I, S]) Test(i I) bool {
	checkIndex[S](i)
	if b.words == nil {
		return false
	}
	return b.words[i/64]&(1<<(i%64)) != 0
}

func (b *Bitset[I, S]) Set(i I, on bool) {
	checkIndex[S](i)
	if b.words == nil {
		if !on {
			return
		}
		b.words = make([]uint64, (sizeOf[S]()+63)/64)
	}
	if on {
		b.words[i/64] |= 1 << (i % 64)
	} else {
		b.words[i/64] &^= 1 << (i % 64)
	}
}

// Count returns the number of set bits.
func (b Bitset[I, S]) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

func (b Bitset[I, S]) Any() bool { return b.Count() != 0 }

// Ones yields the set indices in increasing order.
func (b Bitset[I, S]) Ones() iter.Seq[I] {
	return func(yield func(I) bool) {
		for wi, w := range b.words {
			for w != 0 {
				i := wi*64 + bits.TrailingZeros64(w)
				if !yield(I(i)) {
					return
				}
				w &= w - 1
			}
		}
	}
}

func (b Bitset[I, S]) Equal(o Bitset[I, S]) bool {
	for i := range max(len(b.words), len(o.words)) {
		if word(b.words, i) != word(o.words, i) {
			return false
		}
	}
	return true
}

func word(ws []uint64, i int) uint64 {
	if i < len(ws) {
		return ws[i]
	}
	return 0
}

func (b Bitset[I, S]) SerializeTo(s serde.Sink) {
	serde.WriteBits(s, sizeOf[S](), func(i int) bool { return b.Test(I(i)) })
}

func (b *Bitset[I, S]) DeserializeFrom(src serde.Source) error {
	clear(b.words)
	return serde.ReadBits(src, sizeOf[S](), func(i int, on bool) { b.Set(I(i), on) })
}
