// Package serde is a deterministic, type-driven binary encoder and decoder.
//
// Encoding is chosen per type, most specific first:
//
//   - a SerializeTo / DeserializeFrom method on the type
//   - a function pair installed with Register (exact type, then registered interfaces)
//   - the built-in rule for the type's kind
//
// Pointer types skip the first two steps unless the pointer type itself was
// registered: *T is always a presence flag followed by T, even when *T
// satisfies a registered interface.
//
// Built-in rules:
//
//	bool                  1 byte (0 or 1)
//	ints, uints, floats   fixed width, native byte order; int and uint use 8 bytes
//	complex               real then imaginary
//	string                uint64 length, raw bytes
//	slice                 uint64 length, elements
//	array                 elements, no length
//	map                   uint64 count, (key, value) pairs sorted by key
//	pointer               bool presence, then the pointee by value
//	func                  nothing (write-only)
//
// Named types encode as their underlying kind. Structs, channels, uintptr,
// unsafe.Pointer, unregistered interfaces, maps with non-ordered keys,
// pointers to unnamed byte or uint16 (C string forms) and types defined in
// terms of themselves (type tree []tree) have no rule: the first attempt to
// encode such a type panics with *UnsupportedTypeError.
//
// The output is stable for equal inputs within one build on one machine. It
// is not a portable interchange format.
package serde

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotDeserializable is returned when decoding a write-only type such as a
// func or a type that only implements Serializer.
var ErrNotDeserializable = errors.New("serde: type is write-only")

// ErrInvalid is returned for byte patterns no encoder produces.
var ErrInvalid = errors.New("serde: invalid encoding")

// Serializer is implemented by types that encode themselves.
type Serializer interface {
	SerializeTo(s Sink)
}

// Deserializer is implemented by pointer types that decode themselves.
type Deserializer interface {
	DeserializeFrom(src Source) error
}

// UnsupportedTypeError is the panic value raised when a type has no encoding.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	name := "untyped nil"
	if e.Type != nil {
		name = e.Type.String()
	}
	if e.Reason == "" {
		return "serde: unsupported type " + name
	}
	return fmt.Sprintf("serde: unsupported type %s: %s", name, e.Reason)
}

// Serialize appends the encoding of each value to s, in order.
// It panics with *UnsupportedTypeError if a value has no encoding.
func Serialize(s Sink, vs ...any) {
	for _, v := range vs {
		switch x := v.(type) {
		case nil:
			panic(&UnsupportedTypeError{})
		case bool:
			putBool(s, x)
		case uint8:
			s.GetSpace(1)[0] = x
		case uint32:
			putUint32(s, x)
		case uint64:
			putUint64(s, x)
		case int:
			putUint64(s, uint64(x))
		case string:
			putString(s, x)
		case []byte:
			putBytes(s, x)
		default:
			rv := reflect.ValueOf(v)
			encoderFor(rv.Type())(s, rv)
		}
	}
}

// Deserialize decodes into each pointer, in order, stopping at the first error.
// Passing anything other than a non-nil pointer panics.
func Deserialize(src Source, ptrs ...any) error {
	for _, p := range ptrs {
		if d, ok := p.(Deserializer); ok {
			if err := d.DeserializeFrom(src); err != nil {
				return err
			}
			continue
		}
		rv := reflect.ValueOf(p)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			panic(fmt.Sprintf("serde: Deserialize target must be a non-nil pointer, got %T", p))
		}
		elem := rv.Elem()
		if err := decoderFor(elem.Type())(src, elem); err != nil {
			return err
		}
	}
	return nil
}

// Bytes is a convenience wrapper that serializes vs into a new slice.
func Bytes(vs ...any) []byte {
	var s ByteVectorSink
	Serialize(&s, vs...)
	return s
}

// Decode reads a single T from b and requires that every byte is consumed.
func Decode[T any](b []byte) (T, error) {
	var v T
	src := NewBlobSource(b)
	if err := Deserialize(src, &v); err != nil {
		return v, err
	}
	if n := src.Remaining(); n != 0 {
		return v, fmt.Errorf("%w: %d trailing bytes", ErrInvalid, n)
	}
	return v, nil
}
