package serde

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sync"
)

type decoderFunc func(src Source, v reflect.Value) error

// maxLen bounds decoded lengths so a corrupt prefix cannot request a huge
// allocation before the source runs dry.
const maxLen = math.MaxInt32

// preallocLimit caps how many elements are reserved up front for a decoded
// slice or map; longer containers grow as elements arrive.
const preallocLimit = 1024

var decoderCache sync.Map // reflect.Type -> decoderFunc

func decoderFor(t reflect.Type) decoderFunc { return cachedDecoder(t, nil) }

func cachedDecoder(t reflect.Type, building []reflect.Type) decoderFunc {
	if fn, ok := decoderCache.Load(t); ok {
		return fn.(decoderFunc)
	}
	if slices.Contains(building, t) {
		panic(&UnsupportedTypeError{Type: t, Reason: "recursive type"})
	}
	fn, _ := decoderCache.LoadOrStore(t, newDecoder(t, append(building, t)))
	return fn.(decoderFunc)
}

func notDeserializable(t reflect.Type) decoderFunc {
	return func(Source, reflect.Value) error {
		return fmt.Errorf("%w: %s", ErrNotDeserializable, t)
	}
}

func newDecoder(t reflect.Type, building []reflect.Type) decoderFunc {
	if t.Kind() == reflect.Pointer {
		if r, ok := lookupExact(t); ok {
			return r.decoderFor(t)
		}
		return newPointerDecoder(t, building)
	}
	if t.Kind() != reflect.Interface {
		if reflect.PointerTo(t).Implements(deserializerType) {
			return func(src Source, v reflect.Value) error {
				return v.Addr().Interface().(Deserializer).DeserializeFrom(src)
			}
		}
		if hasMethodEncoder(t) {
			return notDeserializable(t)
		}
	}
	if r, ok := lookup(t); ok {
		return r.decoderFor(t)
	}
	if r, ok := lookupAddr(t); ok {
		return r.decoderFor(t)
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(1)
			if err != nil {
				return err
			}
			switch b[0] {
			case 0:
				v.SetBool(false)
			case 1:
				v.SetBool(true)
			default:
				return fmt.Errorf("%w: bool byte %#x", ErrInvalid, b[0])
			}
			return nil
		}
	case reflect.Int8:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(1)
			if err != nil {
				return err
			}
			v.SetInt(int64(int8(b[0])))
			return nil
		}
	case reflect.Int16:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(2)
			if err != nil {
				return err
			}
			v.SetInt(int64(int16(binary.NativeEndian.Uint16(b))))
			return nil
		}
	case reflect.Int32:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(4)
			if err != nil {
				return err
			}
			v.SetInt(int64(int32(binary.NativeEndian.Uint32(b))))
			return nil
		}
	case reflect.Int, reflect.Int64:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(8)
			if err != nil {
				return err
			}
			v.SetInt(int64(binary.NativeEndian.Uint64(b)))
			return nil
		}
	case reflect.Uint8:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(1)
			if err != nil {
				return err
			}
			v.SetUint(uint64(b[0]))
			return nil
		}
	case reflect.Uint16:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(2)
			if err != nil {
				return err
			}
			v.SetUint(uint64(binary.NativeEndian.Uint16(b)))
			return nil
		}
	case reflect.Uint32:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(4)
			if err != nil {
				return err
			}
			v.SetUint(uint64(binary.NativeEndian.Uint32(b)))
			return nil
		}
	case reflect.Uint, reflect.Uint64:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(8)
			if err != nil {
				return err
			}
			v.SetUint(binary.NativeEndian.Uint64(b))
			return nil
		}
	case reflect.Float32:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(4)
			if err != nil {
				return err
			}
			v.SetFloat(float64(math.Float32frombits(binary.NativeEndian.Uint32(b))))
			return nil
		}
	case reflect.Float64:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(8)
			if err != nil {
				return err
			}
			v.SetFloat(math.Float64frombits(binary.NativeEndian.Uint64(b)))
			return nil
		}
	case reflect.Complex64:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(8)
			if err != nil {
				return err
			}
			re := math.Float32frombits(binary.NativeEndian.Uint32(b[:4]))
			im := math.Float32frombits(binary.NativeEndian.Uint32(b[4:]))
			v.SetComplex(complex(float64(re), float64(im)))
			return nil
		}
	case reflect.Complex128:
		return func(src Source, v reflect.Value) error {
			b, err := src.Read(16)
			if err != nil {
				return err
			}
			re := math.Float64frombits(binary.NativeEndian.Uint64(b[:8]))
			im := math.Float64frombits(binary.NativeEndian.Uint64(b[8:]))
			v.SetComplex(complex(re, im))
			return nil
		}
	case reflect.String:
		return func(src Source, v reflect.Value) error {
			b, err := readBytes(src)
			if err != nil {
				return err
			}
			v.SetString(string(b))
			return nil
		}
	case reflect.Slice:
		return newSliceDecoder(t, building)
	case reflect.Array:
		elem := cachedDecoder(t.Elem(), building)
		return func(src Source, v reflect.Value) error {
			for i := range v.Len() {
				if err := elem(src, v.Index(i)); err != nil {
					return err
				}
			}
			return nil
		}
	case reflect.Map:
		return newMapDecoder(t, building)
	case reflect.Func:
		return notDeserializable(t)
	case reflect.Struct:
		panic(&UnsupportedTypeError{Type: t, Reason: "structs need a DeserializeFrom method or a registered decoder"})
	case reflect.Interface:
		panic(&UnsupportedTypeError{Type: t, Reason: "interface has no registered decoder"})
	default:
		panic(&UnsupportedTypeError{Type: t})
	}
}

func newPointerDecoder(t reflect.Type, building []reflect.Type) decoderFunc {
	if isCString(t.Elem()) {
		panic(&UnsupportedTypeError{Type: t, Reason: "C string pointer; use string or []byte"})
	}
	elem := cachedDecoder(t.Elem(), building)
	return func(src Source, v reflect.Value) error {
		var present bool
		if err := Deserialize(src, &present); err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		p := reflect.New(t.Elem())
		if err := elem(src, p.Elem()); err != nil {
			return err
		}
		v.Set(p)
		return nil
	}
}

func newSliceDecoder(t reflect.Type, building []reflect.Type) decoderFunc {
	if t.Elem().Kind() == reflect.Uint8 && !hasCustomEncoding(t.Elem()) {
		return func(src Source, v reflect.Value) error {
			b, err := readBytes(src)
			if err != nil {
				return err
			}
			if len(b) == 0 {
				v.SetZero()
				return nil
			}
			v.SetBytes(bytes.Clone(b))
			return nil
		}
	}
	elem := cachedDecoder(t.Elem(), building)
	return func(src Source, v reflect.Value) error {
		n, err := readLen(src)
		if err != nil {
			return err
		}
		if n == 0 {
			v.SetZero()
			return nil
		}
		out := reflect.MakeSlice(t, 0, min(n, preallocLimit))
		for range n {
			e := reflect.New(t.Elem()).Elem()
			if err := elem(src, e); err != nil {
				return err
			}
			out = reflect.Append(out, e)
		}
		v.Set(out)
		return nil
	}
}

func newMapDecoder(t reflect.Type, building []reflect.Type) decoderFunc {
	if keyCompare(t.Key()) == nil {
		panic(&UnsupportedTypeError{Type: t, Reason: "map keys must be integers, floats or strings"})
	}
	key, val := cachedDecoder(t.Key(), building), cachedDecoder(t.Elem(), building)
	return func(src Source, v reflect.Value) error {
		n, err := readLen(src)
		if err != nil {
			return err
		}
		if n == 0 {
			v.SetZero()
			return nil
		}
		m := reflect.MakeMapWithSize(t, min(n, preallocLimit))
		for range n {
			k := reflect.New(t.Key()).Elem()
			if err := key(src, k); err != nil {
				return err
			}
			e := reflect.New(t.Elem()).Elem()
			if err := val(src, e); err != nil {
				return err
			}
			m.SetMapIndex(k, e)
		}
		v.Set(m)
		return nil
	}
}

func readLen(src Source) (int, error) {
	b, err := src.Read(8)
	if err != nil {
		return 0, err
	}
	n := binary.NativeEndian.Uint64(b)
	if n > maxLen {
		return 0, fmt.Errorf("%w: length %d out of range", ErrUnderflow, n)
	}
	return int(n), nil
}

func readBytes(src Source) ([]byte, error) {
	n, err := readLen(src)
	if err != nil {
		return nil, err
	}
	return src.Read(n)
}
