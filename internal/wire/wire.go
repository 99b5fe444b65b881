package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version  byte = 1
	kindBlob byte = 1
)

var (
	ErrCorrupt = errors.New("gpucache: corrupt entry")
	magic4     = [...]byte{'G', 'P', 'U', 'B'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Blob: magic(4) | ver(1) | kind(1=blob) | keyLen(u32 be) | key(keyLen) | vlen(u32 be) | payload(vlen)
//
// The full cache key is stored so a reader can tell its own entry from one
// whose key hashed to the same storage key.
func EncodeBlob(key, payload []byte) []byte {
	if len(key) == 0 || uint64(len(key)) > 0xFFFFFFFF {
		panic("gpucache: invalid key length in blob entry")
	}
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 4 + len(key) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindBlob)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(key)))
	buf.Write(u4[:])
	buf.Write(key)

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)
	return buf.Bytes()
}

// DecodeBlob returns subslices of b; it rejects trailing bytes.
func DecodeBlob(b []byte) (key, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindBlob {
		return nil, nil, ErrCorrupt
	}
	off := 6

	// key
	klen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if klen <= 0 || klen > len(b)-off {
		return nil, nil, ErrCorrupt
	}
	key = b[off : off+klen]
	off += klen

	// vlen
	if off+4 > len(b) {
		return nil, nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return nil, nil, ErrCorrupt
	}
	return key, b[off:], nil
}
