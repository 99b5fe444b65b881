package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func mustDecodeBlob(t *testing.T, b []byte) ([]byte, []byte) {
	t.Helper()
	k, p, err := DecodeBlob(b)
	if err != nil {
		t.Fatalf("DecodeBlob error: %v", err)
	}
	return k, p
}

func TestBlobRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		key     []byte
		payload []byte
	}{
		{[]byte{0}, nil},
		{[]byte("k"), []byte("hello")},
		{bytes.Repeat([]byte{0xAB}, 300), []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := EncodeBlob(tc.key, tc.payload)
		k, p := mustDecodeBlob(t, enc)
		if !bytes.Equal(k, tc.key) {
			t.Fatalf("key mismatch: got %x want %x", k, tc.key)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestBlobRejectsTrailingBytes(t *testing.T) {
	enc := EncodeBlob([]byte("k"), []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := DecodeBlob(enc); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestBlobCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeBlob([]byte("key"), []byte("abc"))

	mut := func(f func(b []byte) []byte) []byte {
		return f(bytes.Clone(enc))
	}
	cases := map[string][]byte{
		"short":       enc[:5],
		"bad magic":   mut(func(b []byte) []byte { b[0] = 'X'; return b }),
		"bad version": mut(func(b []byte) []byte { b[4] = 9; return b }),
		"bad kind":    mut(func(b []byte) []byte { b[5] = 2; return b }),
		"zero keylen": mut(func(b []byte) []byte { binary.BigEndian.PutUint32(b[6:], 0); return b }),
		"huge keylen": mut(func(b []byte) []byte { binary.BigEndian.PutUint32(b[6:], 1<<31); return b }),
		"huge vlen":   mut(func(b []byte) []byte { binary.BigEndian.PutUint32(b[13:], 1000); return b }),
		"cut payload": enc[:len(enc)-1],
		"no vlen":     enc[:13],
	}
	for name, b := range cases {
		if _, _, err := DecodeBlob(b); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestEncodeBlobPanicsOnEmptyKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty key")
		}
	}()
	_ = EncodeBlob(nil, []byte("x"))
}
