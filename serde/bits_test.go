package serde

import (
	"errors"
	"testing"
)

func pattern(n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = i%3 == 0 || i == n-1
	}
	return bits
}

func TestBitsRoundTrip(t *testing.T) {
	for _, n := range []int{1, 7, 17, 32, 33, 57, 64, 65, 100, 128} {
		want := pattern(n)
		var s ByteVectorSink
		WriteBits(&s, n, func(i int) bool { return want[i] })

		wantLen := 4
		switch {
		case n > 64:
			wantLen = (n + 7) / 8
		case n > 32:
			wantLen = 8
		}
		if len(s) != wantLen {
			t.Fatalf("n=%d: encoded %d bytes, want %d", n, len(s), wantLen)
		}

		got := make([]bool, n)
		if err := ReadBits(NewBlobSource(s), n, func(i int, on bool) { got[i] = on }); err != nil {
			t.Fatalf("n=%d: ReadBits: %v", n, err)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("n=%d: bit %d = %v, want %v", n, i, got[i], want[i])
			}
		}
	}
}

func TestWideBitsAreMSBFirst(t *testing.T) {
	var s ByteVectorSink
	WriteBits(&s, 72, func(i int) bool { return i == 0 || i == 71 })
	if s[0] != 0x80 || s[8] != 0x01 {
		t.Fatalf("got first=%#x last=%#x, want 0x80 and 0x01", s[0], s[8])
	}
}

func TestReadBitsRejectsOutOfWidth(t *testing.T) {
	var s ByteVectorSink
	WriteBits(&s, 32, func(i int) bool { return i == 9 })
	if err := ReadBits(NewBlobSource(s), 7, func(int, bool) {}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}
