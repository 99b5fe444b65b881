package gpucache

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/gpucache/cachekey"
)

// RequestBuilder assembles a request R field by field and refuses to produce
// it until every field has been set exactly once.
//
//	b := gpucache.NewRequestBuilder[CompileRequest]().
//		Set("Source", src).
//		Set("Validate", true)
//	res, err := gpucache.Call(b, func(r CompileRequest) (*gpucache.CacheResult[Module], error) {
//		return gpucache.LoadOrCreate(ctx, dev, r, codec, compile)
//	})
type RequestBuilder[R CacheRequest] struct {
	req    R
	fields []reflect.StructField
	set    map[string]bool
	errs   []error
	called bool
}

// NewRequestBuilder panics if R is not a struct type.
func NewRequestBuilder[R CacheRequest]() *RequestBuilder[R] {
	t := reflect.TypeFor[R]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("gpucache: request %s is not a struct", t))
	}
	return &RequestBuilder[R]{fields: requestFields(t), set: make(map[string]bool, t.NumField())}
}

// Set assigns value to the named field. Errors are collected and reported by
// Request.
func (b *RequestBuilder[R]) Set(name string, value any) *RequestBuilder[R] {
	t := reflect.TypeFor[R]()
	ferr := func(err error) *RequestBuilder[R] {
		b.errs = append(b.errs, &FieldError{Request: t, Field: name, Err: err})
		return b
	}
	f, ok := t.FieldByName(name)
	if !ok || len(f.Index) != 1 {
		return ferr(ErrUnknownField)
	}
	if b.set[name] {
		return ferr(ErrDuplicateField)
	}
	dst := reflect.ValueOf(&b.req).Elem().Field(f.Index[0])
	src := reflect.ValueOf(value)
	switch {
	case !src.IsValid():
		dst.SetZero()
	case src.Type().AssignableTo(f.Type):
		dst.Set(src)
	default:
		return ferr(fmt.Errorf("%w: have %s, want %s", ErrFieldType, src.Type(), f.Type))
	}
	b.set[name] = true
	return b
}

// Request returns the assembled request, or every builder error including
// one ErrMissingField per unset field.
func (b *RequestBuilder[R]) Request() (R, error) {
	errs := b.errs
	for _, f := range b.fields {
		if !b.set[f.Name] {
			errs = append(errs, &FieldError{Request: reflect.TypeFor[R](), Field: f.Name, Err: ErrMissingField})
		}
	}
	if err := errors.Join(errs...); err != nil {
		var zero R
		return zero, err
	}
	return b.req, nil
}

// CacheKey returns the key the assembled request has on d.
func (b *RequestBuilder[R]) CacheKey(d *Device) (cachekey.Key, error) {
	r, err := b.Request()
	if err != nil {
		return nil, err
	}
	return CreateCacheKey(d, r), nil
}

// Call hands the assembled request to fn. It panics if called twice on the
// same builder.
//
// fn should take every input from the request. Values captured from the
// surrounding scope are invisible to the cache key, so two calls that differ
// only in a captured value would share a cache entry.
func Call[R CacheRequest, T any](b *RequestBuilder[R], fn func(R) (T, error)) (T, error) {
	if b.called {
		panic("gpucache: RequestBuilder.Call called twice")
	}
	b.called = true
	r, err := b.Request()
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(r)
}
