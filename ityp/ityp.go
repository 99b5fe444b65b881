// Package ityp holds containers indexed by named integer types, so that an
// index from one domain (say a binding number) cannot be used where another
// (a dense binding index) is expected without an explicit conversion.
//
// Typed integers themselves are plain named types:
//
//	type BindingIndex uint32
package ityp

import "iter"

// Index is satisfied by any named unsigned integer type.
type Index interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Range yields 0, 1, ..., n-1 as I.
func Range[I Index](n I) iter.Seq[I] {
	return func(yield func(I) bool) {
		for i := I(0); i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}
