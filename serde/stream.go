package serde

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnderflow is returned when a Source has fewer bytes left than a read needs.
var ErrUnderflow = errors.New("serde: source underflow")

// Sink is an append-only byte destination.
type Sink interface {
	// GetSpace grows the sink by n bytes and returns them for writing.
	GetSpace(n int) []byte
}

// Source is a forward-only byte origin.
type Source interface {
	// Read consumes exactly n bytes. It returns an error wrapping ErrUnderflow
	// when fewer than n bytes remain, and consumes nothing in that case.
	Read(n int) ([]byte, error)
}

// ByteVectorSink is a Sink backed by a growable byte slice.
type ByteVectorSink []byte

var _ Sink = (*ByteVectorSink)(nil)

func (s *ByteVectorSink) GetSpace(n int) []byte {
	l := len(*s)
	*s = slices.Grow(*s, n)[:l+n]
	return (*s)[l : l+n]
}

// Bytes returns the accumulated bytes without copying.
func (s *ByteVectorSink) Bytes() []byte { return *s }

// BlobSource reads from an in-memory blob.
type BlobSource struct {
	b   []byte
	off int
}

var _ Source = (*BlobSource)(nil)

func NewBlobSource(b []byte) *BlobSource { return &BlobSource{b: b} }

func (s *BlobSource) Read(n int) ([]byte, error) {
	if n < 0 || n > len(s.b)-s.off {
		return nil, fmt.Errorf("%w: need %d bytes, %d left", ErrUnderflow, n, len(s.b)-s.off)
	}
	out := s.b[s.off : s.off+n : s.off+n]
	s.off += n
	return out, nil
}

// Remaining reports how many unread bytes are left.
func (s *BlobSource) Remaining() int { return len(s.b) - s.off }
