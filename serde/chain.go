package serde

import (
	"fmt"
	"reflect"
	"slices"
)

// SType tags the concrete type of an extension struct in a chain.
type SType uint32

// Chained is a node of a singly linked extension chain. NextInChain returns
// nil at the end of the chain.
type Chained interface {
	SType() SType
	NextInChain() Chained
}

// ChainError describes a chain that does not match its allowed set.
type ChainError struct {
	SType     SType
	Duplicate bool
}

func (e *ChainError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("serde: extension %d appears more than once in chain", e.SType)
	}
	return fmt.Sprintf("serde: extension %d is not allowed in this chain", e.SType)
}

// ValidateChain checks that every node of the chain starting at head has a
// tag in allowed and that no tag repeats. allowed itself must not repeat a
// tag; that is a programming error and panics.
func ValidateChain(head Chained, allowed ...SType) error {
	_, err := walkChain(head, allowed)
	return err
}

// SerializeChain validates the chain against allowed and then, for each
// allowed tag in order, writes a presence flag followed by the matching
// node's own encoding when present. Invalid chains panic; callers that take
// chains from user input should call ValidateChain first.
func SerializeChain(s Sink, head Chained, allowed ...SType) {
	found, err := walkChain(head, allowed)
	if err != nil {
		panic(err)
	}
	for _, st := range allowed {
		node, ok := found[st]
		putBool(s, ok)
		if !ok {
			continue
		}
		rv := reflect.ValueOf(node)
		if rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		encoderFor(rv.Type())(s, rv)
	}
}

func walkChain(head Chained, allowed []SType) (map[SType]Chained, error) {
	for i, st := range allowed {
		if slices.Contains(allowed[:i], st) {
			panic(fmt.Sprintf("serde: extension %d listed twice in allowed set", st))
		}
	}
	found := make(map[SType]Chained, len(allowed))
	for node := head; !isNilChain(node); node = node.NextInChain() {
		st := node.SType()
		if !slices.Contains(allowed, st) {
			return nil, &ChainError{SType: st}
		}
		if _, dup := found[st]; dup {
			return nil, &ChainError{SType: st, Duplicate: true}
		}
		found[st] = node
	}
	return found, nil
}

func isNilChain(c Chained) bool {
	if c == nil {
		return true
	}
	rv := reflect.ValueOf(c)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
