package serde

import (
	"bytes"
	"errors"
	"testing"
)

const (
	stypeAlpha SType = iota + 1
	stypeBeta
	stypeGamma
)

type alpha struct {
	N    uint32
	Next Chained
}

func (a *alpha) SType() SType         { return stypeAlpha }
func (a *alpha) NextInChain() Chained { return a.Next }
func (a alpha) SerializeTo(s Sink)    { Serialize(s, a.N) }

type beta struct {
	Name string
	Next Chained
}

func (b *beta) SType() SType         { return stypeBeta }
func (b *beta) NextInChain() Chained { return b.Next }
func (b beta) SerializeTo(s Sink)    { Serialize(s, b.Name) }

type gamma struct{ Next Chained }

func (g *gamma) SType() SType         { return stypeGamma }
func (g *gamma) NextInChain() Chained { return g.Next }
func (gamma) SerializeTo(Sink)        {}

func TestChainOrderFollowsAllowedSet(t *testing.T) {
	a := &alpha{N: 5}
	b := &beta{Name: "b"}
	a.Next = b

	var s1, s2 ByteVectorSink
	SerializeChain(&s1, a, stypeAlpha, stypeBeta)

	// Same nodes linked the other way round.
	a2 := &alpha{N: 5}
	b2 := &beta{Name: "b", Next: a2}
	SerializeChain(&s2, b2, stypeAlpha, stypeBeta)

	if !bytes.Equal(s1, s2) {
		t.Fatalf("chain order leaked into encoding:\n%x\n%x", s1, s2)
	}
	want := Bytes(true, uint32(5), true, "b")
	if !bytes.Equal(s1, want) {
		t.Fatalf("got %x want %x", []byte(s1), want)
	}
}

func TestChainAbsentNodes(t *testing.T) {
	var s ByteVectorSink
	SerializeChain(&s, &beta{Name: "x"}, stypeAlpha, stypeBeta)
	if want := Bytes(false, true, "x"); !bytes.Equal(s, want) {
		t.Fatalf("got %x want %x", []byte(s), want)
	}

	var empty ByteVectorSink
	SerializeChain(&empty, nil, stypeAlpha, stypeBeta)
	if want := Bytes(false, false); !bytes.Equal(empty, want) {
		t.Fatalf("empty chain: got %x want %x", []byte(empty), want)
	}

	var typedNil *alpha
	if err := ValidateChain(typedNil, stypeAlpha); err != nil {
		t.Fatalf("typed nil head should be an empty chain: %v", err)
	}
}

func TestChainValidation(t *testing.T) {
	var ce *ChainError

	err := ValidateChain(&alpha{Next: &gamma{}}, stypeAlpha, stypeBeta)
	if !errors.As(err, &ce) || ce.SType != stypeGamma || ce.Duplicate {
		t.Fatalf("unknown node: got %v", err)
	}

	err = ValidateChain(&alpha{Next: &beta{Next: &alpha{}}}, stypeAlpha, stypeBeta)
	if !errors.As(err, &ce) || ce.SType != stypeAlpha || !ce.Duplicate {
		t.Fatalf("duplicate node: got %v", err)
	}

	// A cycle revisits a tag and is reported as a duplicate instead of looping.
	a := &alpha{}
	a.Next = &beta{Next: a}
	if err := ValidateChain(a, stypeAlpha, stypeBeta); !errors.As(err, &ce) || !ce.Duplicate {
		t.Fatalf("cycle: got %v", err)
	}
}

func TestChainPanics(t *testing.T) {
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("duplicate allowed tag should panic")
			}
		}()
		_ = ValidateChain(nil, stypeAlpha, stypeAlpha)
	}()
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("serializing an invalid chain should panic")
			}
		}()
		var s ByteVectorSink
		SerializeChain(&s, &gamma{}, stypeAlpha)
	}()
}
