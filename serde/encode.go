package serde

import (
	"cmp"
	"encoding/binary"
	"math"
	"reflect"
	"slices"
	"sync"
)

type encoderFunc func(s Sink, v reflect.Value)

var (
	serializerType   = reflect.TypeFor[Serializer]()
	deserializerType = reflect.TypeFor[Deserializer]()
	encoderCache     sync.Map // reflect.Type -> encoderFunc
)

func encoderFor(t reflect.Type) encoderFunc { return cachedEncoder(t, nil) }

// cachedEncoder builds t's encoder once. building lists the types whose
// encoders are under construction on this call path; meeting one again means
// t is defined in terms of itself through kind rules alone.
func cachedEncoder(t reflect.Type, building []reflect.Type) encoderFunc {
	if fn, ok := encoderCache.Load(t); ok {
		return fn.(encoderFunc)
	}
	if slices.Contains(building, t) {
		panic(&UnsupportedTypeError{Type: t, Reason: "recursive type"})
	}
	fn, _ := encoderCache.LoadOrStore(t, newEncoder(t, append(building, t)))
	return fn.(encoderFunc)
}

// hasMethodEncoder reports whether t or *t implements Serializer. Pointer
// kinds are excluded so that *T always carries its presence flag.
func hasMethodEncoder(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return false
	}
	return t.Implements(serializerType) || reflect.PointerTo(t).Implements(serializerType)
}

func hasCustomEncoding(t reflect.Type) bool {
	if hasMethodEncoder(t) {
		return true
	}
	if _, ok := lookup(t); ok {
		return true
	}
	_, ok := lookupAddr(t)
	return ok
}

func newEncoder(t reflect.Type, building []reflect.Type) encoderFunc {
	if t.Kind() == reflect.Pointer {
		// Only an exact registration of the pointer type replaces the
		// presence flag; interface registrations apply to the pointee.
		if r, ok := lookupExact(t); ok {
			return r.encode
		}
		return newPointerEncoder(t, building)
	}
	if hasMethodEncoder(t) {
		if t.Implements(serializerType) {
			return func(s Sink, v reflect.Value) {
				ser, ok := v.Interface().(Serializer)
				if !ok {
					panic(&UnsupportedTypeError{Type: t, Reason: "nil interface value"})
				}
				ser.SerializeTo(s)
			}
		}
		return func(s Sink, v reflect.Value) {
			p := reflect.New(t)
			p.Elem().Set(v)
			p.Interface().(Serializer).SerializeTo(s)
		}
	}
	if r, ok := lookup(t); ok {
		return r.encode
	}
	if r, ok := lookupAddr(t); ok {
		return r.addrEncoder(t)
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(s Sink, v reflect.Value) { putBool(s, v.Bool()) }
	case reflect.Int8:
		return func(s Sink, v reflect.Value) { s.GetSpace(1)[0] = byte(v.Int()) }
	case reflect.Int16:
		return func(s Sink, v reflect.Value) { putUint16(s, uint16(v.Int())) }
	case reflect.Int32:
		return func(s Sink, v reflect.Value) { putUint32(s, uint32(v.Int())) }
	case reflect.Int, reflect.Int64:
		return func(s Sink, v reflect.Value) { putUint64(s, uint64(v.Int())) }
	case reflect.Uint8:
		return func(s Sink, v reflect.Value) { s.GetSpace(1)[0] = byte(v.Uint()) }
	case reflect.Uint16:
		return func(s Sink, v reflect.Value) { putUint16(s, uint16(v.Uint())) }
	case reflect.Uint32:
		return func(s Sink, v reflect.Value) { putUint32(s, uint32(v.Uint())) }
	case reflect.Uint, reflect.Uint64:
		return func(s Sink, v reflect.Value) { putUint64(s, v.Uint()) }
	case reflect.Float32:
		return func(s Sink, v reflect.Value) { putUint32(s, math.Float32bits(float32(v.Float()))) }
	case reflect.Float64:
		return func(s Sink, v reflect.Value) { putUint64(s, math.Float64bits(v.Float())) }
	case reflect.Complex64:
		return func(s Sink, v reflect.Value) {
			c := v.Complex()
			putUint32(s, math.Float32bits(float32(real(c))))
			putUint32(s, math.Float32bits(float32(imag(c))))
		}
	case reflect.Complex128:
		return func(s Sink, v reflect.Value) {
			c := v.Complex()
			putUint64(s, math.Float64bits(real(c)))
			putUint64(s, math.Float64bits(imag(c)))
		}
	case reflect.String:
		return func(s Sink, v reflect.Value) { putString(s, v.String()) }
	case reflect.Slice:
		return newSliceEncoder(t, building)
	case reflect.Array:
		elem := cachedEncoder(t.Elem(), building)
		return func(s Sink, v reflect.Value) {
			for i := range v.Len() {
				elem(s, v.Index(i))
			}
		}
	case reflect.Map:
		return newMapEncoder(t, building)
	case reflect.Func:
		return func(Sink, reflect.Value) {}
	case reflect.Struct:
		panic(&UnsupportedTypeError{Type: t, Reason: "structs need a SerializeTo method or a registered encoder"})
	case reflect.Interface:
		panic(&UnsupportedTypeError{Type: t, Reason: "interface has no registered encoder"})
	default:
		panic(&UnsupportedTypeError{Type: t})
	}
}

func newPointerEncoder(t reflect.Type, building []reflect.Type) encoderFunc {
	if isCString(t.Elem()) {
		panic(&UnsupportedTypeError{Type: t, Reason: "C string pointer; use string or []byte"})
	}
	elem := cachedEncoder(t.Elem(), building)
	return func(s Sink, v reflect.Value) {
		if v.IsNil() {
			putBool(s, false)
			return
		}
		putBool(s, true)
		elem(s, v.Elem())
	}
}

func newSliceEncoder(t reflect.Type, building []reflect.Type) encoderFunc {
	if t.Elem().Kind() == reflect.Uint8 && !hasCustomEncoding(t.Elem()) {
		return func(s Sink, v reflect.Value) { putBytes(s, v.Bytes()) }
	}
	elem := cachedEncoder(t.Elem(), building)
	return func(s Sink, v reflect.Value) {
		putUint64(s, uint64(v.Len()))
		for i := range v.Len() {
			elem(s, v.Index(i))
		}
	}
}

func newMapEncoder(t reflect.Type, building []reflect.Type) encoderFunc {
	less := keyCompare(t.Key())
	if less == nil {
		panic(&UnsupportedTypeError{Type: t, Reason: "map keys must be integers, floats or strings"})
	}
	key, val := cachedEncoder(t.Key(), building), cachedEncoder(t.Elem(), building)
	return func(s Sink, v reflect.Value) {
		keys := v.MapKeys()
		slices.SortStableFunc(keys, less)
		putUint64(s, uint64(len(keys)))
		for _, k := range keys {
			key(s, k)
			val(s, v.MapIndex(k))
		}
	}
}

func keyCompare(t reflect.Type) func(a, b reflect.Value) int {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) }
	case reflect.Float32, reflect.Float64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) }
	case reflect.String:
		return func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) }
	}
	return nil
}

// isCString matches the pointee types Go uses for NUL-terminated strings
// (see syscall.BytePtrFromString and syscall.UTF16PtrFromString).
func isCString(t reflect.Type) bool {
	return t == reflect.TypeFor[byte]() || t == reflect.TypeFor[uint16]()
}

func putBool(s Sink, b bool) {
	if b {
		s.GetSpace(1)[0] = 1
	} else {
		s.GetSpace(1)[0] = 0
	}
}

func putUint16(s Sink, v uint16) { binary.NativeEndian.PutUint16(s.GetSpace(2), v) }
func putUint32(s Sink, v uint32) { binary.NativeEndian.PutUint32(s.GetSpace(4), v) }
func putUint64(s Sink, v uint64) { binary.NativeEndian.PutUint64(s.GetSpace(8), v) }

func putString(s Sink, v string) {
	putUint64(s, uint64(len(v)))
	copy(s.GetSpace(len(v)), v)
}

func putBytes(s Sink, v []byte) {
	putUint64(s, uint64(len(v)))
	copy(s.GetSpace(len(v)), v)
}
