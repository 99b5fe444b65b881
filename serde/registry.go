package serde

import (
	"fmt"
	"reflect"
	"sync"
)

// registration holds the encoder pair for one registered type. The decode
// half is optional; a nil decode makes the type write-only.
type registration struct {
	t      reflect.Type
	encode encoderFunc
	decode func(src Source) (any, error)
}

var (
	regMu  sync.RWMutex
	exact  = map[reflect.Type]*registration{}
	ifaces []*registration // interface registrations, in registration order
)

// Register installs ser and de as the encoding of T. It is the extension
// point for types that cannot carry SerializeTo / DeserializeFrom methods,
// such as structs from other modules. If T is an interface type, the pair
// applies to every type implementing T that has no exact registration.
//
// de may be nil for write-only types. Register must run before T is first
// encoded (typically from an init func) and panics if T is already
// registered. Predeclared types such as uint32, string and []byte keep their
// built-in encoding and cannot be registered; declare a named type instead.
func Register[T any](ser func(s Sink, v T), de func(src Source, v *T) error) {
	t := reflect.TypeFor[T]()
	if isPredeclared(t) {
		panic(fmt.Sprintf("serde: predeclared type %s cannot be registered", t))
	}
	r := &registration{
		t: t,
		encode: func(s Sink, v reflect.Value) {
			x, _ := v.Interface().(T)
			ser(s, x)
		},
	}
	if de != nil {
		r.decode = func(src Source) (any, error) {
			var x T
			err := de(src, &x)
			return x, err
		}
	}

	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := exact[t]; dup {
		panic(fmt.Sprintf("serde: %s registered twice", t))
	}
	exact[t] = r
	if t.Kind() == reflect.Interface {
		ifaces = append(ifaces, r)
	}
}

func isPredeclared(t reflect.Type) bool {
	if t.PkgPath() != "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return t.Name() != ""
	case reflect.Slice:
		return t.Name() == "" && t.Elem() == reflect.TypeFor[byte]()
	}
	return false
}

func lookupExact(t reflect.Type) (*registration, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	r, ok := exact[t]
	return r, ok
}

// lookup finds the exact registration of t, else the first interface
// registration t implements. Pointer kinds only ever match exactly; see
// newEncoder.
func lookup(t reflect.Type) (*registration, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	if r, ok := exact[t]; ok {
		return r, true
	}
	if t.Kind() == reflect.Pointer {
		return nil, false
	}
	for _, r := range ifaces {
		if t.Implements(r.t) {
			return r, true
		}
	}
	return nil, false
}

// lookupAddr finds an interface registration that only *t satisfies, for
// types whose methods have pointer receivers.
func lookupAddr(t reflect.Type) (*registration, bool) {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return nil, false
	}
	pt := reflect.PointerTo(t)
	regMu.RLock()
	defer regMu.RUnlock()
	for _, r := range ifaces {
		if pt.Implements(r.t) {
			return r, true
		}
	}
	return nil, false
}

// addrEncoder encodes a T through a registration that wants *T.
func (r *registration) addrEncoder(t reflect.Type) encoderFunc {
	return func(s Sink, v reflect.Value) {
		p := reflect.New(t)
		p.Elem().Set(v)
		r.encode(s, p)
	}
}

func (r *registration) decoderFor(t reflect.Type) decoderFunc {
	if r.decode == nil {
		return notDeserializable(t)
	}
	return func(src Source, v reflect.Value) error {
		x, err := r.decode(src)
		if err != nil {
			return err
		}
		rv := reflect.ValueOf(x)
		if !rv.IsValid() {
			v.SetZero()
			return nil
		}
		if rv.Kind() == reflect.Pointer && rv.Type().Elem() == t && !rv.IsNil() {
			rv = rv.Elem()
		}
		if !rv.Type().AssignableTo(t) {
			return fmt.Errorf("%w: decoded %s is not assignable to %s", ErrInvalid, rv.Type(), t)
		}
		v.Set(rv)
		return nil
	}
}
