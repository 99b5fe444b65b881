package serde

import (
	"encoding/binary"
	"fmt"
)

// WriteBits encodes an n-bit set whose bit i is bit(i).
//
// Sets of up to 32 bits are written as one uint32 and sets of up to 64 bits as
// one uint64, with bit i at value bit i. Wider sets are written as ceil(n/8)
// bytes, lowest indices first, each byte filled from its most significant bit.
func WriteBits(s Sink, n int, bit func(i int) bool) {
	switch {
	case n <= 32:
		var w uint32
		for i := range n {
			if bit(i) {
				w |= 1 << i
			}
		}
		putUint32(s, w)
	case n <= 64:
		var w uint64
		for i := range n {
			if bit(i) {
				w |= 1 << i
			}
		}
		putUint64(s, w)
	default:
		for base := 0; base < n; base += 8 {
			var b byte
			for j := 0; j < 8 && base+j < n; j++ {
				if bit(base + j) {
					b |= 0x80 >> j
				}
			}
			s.GetSpace(1)[0] = b
		}
	}
}

// ReadBits decodes an n-bit set written by WriteBits, calling set for every
// index in order. Bits above n in the packed word forms are rejected.
func ReadBits(src Source, n int, set func(i int, on bool)) error {
	switch {
	case n <= 32:
		b, err := src.Read(4)
		if err != nil {
			return err
		}
		w := uint64(binary.NativeEndian.Uint32(b))
		return spread(w, n, set)
	case n <= 64:
		b, err := src.Read(8)
		if err != nil {
			return err
		}
		return spread(binary.NativeEndian.Uint64(b), n, set)
	default:
		b, err := src.Read((n + 7) / 8)
		if err != nil {
			return err
		}
		for i := range n {
			set(i, b[i/8]&(0x80>>(i%8)) != 0)
		}
		return nil
	}
}

func spread(w uint64, n int, set func(int, bool)) error {
	if n < 64 && w>>n != 0 {
		return fmt.Errorf("%w: bits set beyond width %d", ErrInvalid, n)
	}
	for i := range n {
		set(i, w&(1<<i) != 0)
	}
	return nil
}
