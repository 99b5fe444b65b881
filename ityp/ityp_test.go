package ityp

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unkn0wn-root/gpucache/serde"
)

type bindingIndex uint32

type (
	bits7   struct{}
	bits17  struct{}
	bits32  struct{}
	bits33  struct{}
	bits57  struct{}
	bits64  struct{}
	bits65  struct{}
	bits70  struct{}
	bits100 struct{}
	bits128 struct{}
	three   struct{}
)

func (bits7) Size() int   { return 7 }
func (bits17) Size() int  { return 17 }
func (bits32) Size() int  { return 32 }
func (bits33) Size() int  { return 33 }
func (bits57) Size() int  { return 57 }
func (bits64) Size() int  { return 64 }
func (bits65) Size() int  { return 65 }
func (bits70) Size() int  { return 70 }
func (bits100) Size() int { return 100 }
func (bits128) Size() int { return 128 }
func (three) Size() int   { return 3 }

func sample[S Size]() Bitset[bindingIndex, S] {
	var b Bitset[bindingIndex, S]
	n := b.Len()
	for i := bindingIndex(0); i < n; i += 3 {
		b.Set(i, true)
	}
	b.Set(n-1, true)
	return b
}

func bitsetRoundTrip[S Size](t *testing.T) {
	t.Helper()
	b := sample[S]()
	got, err := serde.Decode[Bitset[bindingIndex, S]](serde.Bytes(b))
	if err != nil {
		t.Fatalf("width %d: %v", b.Len(), err)
	}
	if !got.Equal(b) {
		t.Fatalf("width %d: got %v want %v", b.Len(), slices.Collect(got.Ones()), slices.Collect(b.Ones()))
	}

	var empty Bitset[bindingIndex, S]
	many := []Bitset[bindingIndex, S]{b, empty, b}
	gotMany, err := serde.Decode[[]Bitset[bindingIndex, S]](serde.Bytes(many))
	if err != nil {
		t.Fatalf("width %d slice: %v", b.Len(), err)
	}
	if len(gotMany) != 3 || !gotMany[0].Equal(b) || gotMany[1].Any() || !gotMany[2].Equal(b) {
		t.Fatalf("width %d slice: got %d sets", b.Len(), len(gotMany))
	}

	gotPtr, err := serde.Decode[*Bitset[bindingIndex, S]](serde.Bytes(&b))
	if err != nil {
		t.Fatalf("width %d pointer: %v", b.Len(), err)
	}
	if gotPtr == nil || !gotPtr.Equal(b) {
		t.Fatalf("width %d pointer: got %v", b.Len(), gotPtr)
	}
}

func TestBitsetRoundTrip(t *testing.T) {
	bitsetRoundTrip[bits7](t)
	bitsetRoundTrip[bits17](t)
	bitsetRoundTrip[bits32](t)
	bitsetRoundTrip[bits57](t)
	bitsetRoundTrip[bits100](t)
}

func encodedSize[S Size]() int {
	var b Bitset[bindingIndex, S]
	return len(serde.Bytes(b))
}

func TestBitsetWidthSelectsEncoding(t *testing.T) {
	for _, tc := range []struct {
		got, want int
	}{
		{encodedSize[bits7](), 4},
		{encodedSize[bits32](), 4},
		{encodedSize[bits33](), 8},
		{encodedSize[bits64](), 8},
		{encodedSize[bits65](), 9},
		{encodedSize[bits128](), 16},
	} {
		if tc.got != tc.want {
			t.Fatalf("encoded %d bytes, want %d", tc.got, tc.want)
		}
	}
}

func TestBitsetOnesAndCount(t *testing.T) {
	var b Bitset[bindingIndex, bits70]
	for _, i := range []bindingIndex{0, 5, 63, 64, 69} {
		b.Set(i, true)
	}
	b.Set(5, false)
	if diff := cmp.Diff([]bindingIndex{0, 63, 64, 69}, slices.Collect(b.Ones())); diff != "" {
		t.Fatalf("Ones mismatch (-want +got):\n%s", diff)
	}
	if b.Count() != 4 || !b.Any() {
		t.Fatalf("Count=%d Any=%v", b.Count(), b.Any())
	}
}

func TestBitsetZeroValue(t *testing.T) {
	var a, b Bitset[bindingIndex, bits17]
	if a.Len() != 17 || a.Any() || a.Test(16) {
		t.Fatalf("zero value: len %d any %v", a.Len(), a.Any())
	}
	b.Set(3, true)
	b.Set(3, false)
	if !a.Equal(b) {
		t.Fatal("cleared set differs from zero value")
	}
}

func TestBitsetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	var b Bitset[bindingIndex, bits7]
	b.Test(7)
}

func TestBitsetRejectsStrayBits(t *testing.T) {
	var wide Bitset[bindingIndex, bits32]
	wide.Set(20, true)
	_, err := serde.Decode[Bitset[bindingIndex, bits17]](serde.Bytes(wide))
	if !errors.Is(err, serde.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestArrayHasNoLengthPrefix(t *testing.T) {
	var a Array[bindingIndex, uint16, three]
	a.Set(0, 1)
	a.Set(2, 3)
	b := serde.Bytes(a)
	if len(b) != 6 {
		t.Fatalf("encoded %d bytes, want 6", len(b))
	}

	got, err := serde.Decode[Array[bindingIndex, uint16, three]](b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Values(), got.Values()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	var zero Array[bindingIndex, uint16, three]
	if zero.Len() != 3 || zero.At(2) != 0 || len(serde.Bytes(zero)) != 6 {
		t.Fatalf("zero array: len %d", zero.Len())
	}
}

func TestVecRoundTrip(t *testing.T) {
	v := VecOf[bindingIndex]([]string{"a", "bc"})
	v.Append("def")
	got, err := serde.Decode[Vec[bindingIndex, string]](serde.Bytes(v))
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 || got.At(2) != "def" {
		t.Fatalf("got %v", got.Values())
	}
}

func TestVecResize(t *testing.T) {
	v := NewVec[bindingIndex, int](2)
	v.Set(1, 9)
	v.Resize(1)
	v.Resize(3)
	if diff := cmp.Diff([]int{0, 0, 0}, v.Values()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRange(t *testing.T) {
	if diff := cmp.Diff([]bindingIndex{0, 1, 2}, slices.Collect(Range[bindingIndex](3))); diff != "" {
		t.Fatal(diff)
	}
}
