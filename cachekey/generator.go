package cachekey

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/gpucache/serde"
)

// MemberID frames one recorded member. It is written as an unsigned varint,
// so the first 128 members of a generator cost one byte each.
type MemberID uint64

// Recorder is implemented by types that record their own fields. The
// generator passed in is a sub-generator with its own member ids.
type Recorder interface {
	RecordCacheKey(g *Generator)
}

// Generator accumulates a Key. The zero value is a root generator.
//
// A sub-generator, obtained with Sub, writes into its parent's buffer but
// numbers its members from zero. Generators are not safe for concurrent use.
type Generator struct {
	buf  *serde.ByteVectorSink // root only
	sink serde.Sink
	next MemberID
	sub  bool
}

var _ serde.Sink = (*Generator)(nil)

func NewGenerator() *Generator { return &Generator{} }

// nested returns an unframed generator writing straight into s. It is used
// when a recorder runs inside serde, where the caller already framed the
// value.
func nested(s serde.Sink) *Generator {
	if g, ok := s.(*Generator); ok {
		s = g.out()
	}
	return &Generator{sink: s, sub: true}
}

func (g *Generator) out() serde.Sink {
	if g.sink == nil {
		g.buf = new(serde.ByteVectorSink)
		g.sink = g.buf
	}
	return g.sink
}

// GetSpace appends n raw bytes with no member framing. Recorders can pass
// the generator to serde.Serialize to write unframed values.
func (g *Generator) GetSpace(n int) []byte { return g.out().GetSpace(n) }

func (g *Generator) writeID() {
	var tmp [binary.MaxVarintLen64]byte
	b := binary.AppendUvarint(tmp[:0], uint64(g.next))
	copy(g.out().GetSpace(len(b)), b)
	g.next++
}

// Sub consumes the next member id as a group marker and returns a
// sub-generator for the group's members.
func (g *Generator) Sub() *Generator {
	g.writeID()
	return &Generator{sink: g.out(), sub: true}
}

// asRecorder returns m as a Recorder unless m is a pointer. Pointers go
// through serde so they carry a presence flag and may be nil.
func asRecorder(m any) (Recorder, bool) {
	r, ok := m.(Recorder)
	if !ok || reflect.ValueOf(m).Kind() == reflect.Pointer {
		return nil, false
	}
	return r, true
}

// Record records each member in order, each preceded by the next member id.
// Recorders get a sub-generator; other values, pointers to recorders
// included, are encoded with serde and panic if serde has no rule for them.
func (g *Generator) Record(members ...any) *Generator {
	for _, m := range members {
		if r, ok := asRecorder(m); ok {
			r.RecordCacheKey(g.Sub())
			continue
		}
		g.writeID()
		serde.Serialize(g.out(), m)
	}
	return g
}

// RecordIterable records a slice or array as one member: the member id, the
// element count as a uint64, then each element without per-element ids.
func (g *Generator) RecordIterable(items any) *Generator {
	rv := reflect.ValueOf(items)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		panic(fmt.Sprintf("cachekey: RecordIterable of non-iterable %T", items))
	}
	g.writeID()
	s := g.out()
	serde.Serialize(s, uint64(rv.Len()))
	for i := range rv.Len() {
		e := rv.Index(i).Interface()
		if r, ok := asRecorder(e); ok {
			r.RecordCacheKey(nested(s))
			continue
		}
		serde.Serialize(s, e)
	}
	return g
}

// Key returns a copy of the recorded key. It panics on a sub-generator.
func (g *Generator) Key() Key {
	if g.sub {
		panic("cachekey: Key called on a sub-generator")
	}
	if g.buf == nil {
		return Key{}
	}
	return Key(bytes.Clone(g.buf.Bytes()))
}
