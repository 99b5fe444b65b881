package gpucache

import (
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/gpucache/cachekey"
)

// CacheRequest is a struct whose exported fields are every input of a
// cacheable operation. All fields are recorded into the key in declaration
// order; wrap inputs that cannot affect the output in
// cachekey.UnsafeUnkeyedValue. Unexported fields are not allowed.
type CacheRequest interface {
	CacheKeyType() cachekey.Type
}

// CreateCacheKey records the device key, the request type and every field
// of req.
func CreateCacheKey(d *Device, req CacheRequest) cachekey.Key {
	g := cachekey.NewGenerator()
	g.Record(d.CacheKey(), req.CacheKeyType())
	recordFields(g, req)
	return g.Key()
}

func recordFields(g *cachekey.Generator, req CacheRequest) {
	rv := reflect.ValueOf(req)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		panic(fmt.Sprintf("gpucache: request %T is not a struct", req))
	}
	for _, f := range requestFields(rv.Type()) {
		g.Record(rv.FieldByIndex(f.Index).Interface())
	}
}

// requestFields lists t's fields in declaration order. It panics on
// unexported fields, which would otherwise be left out of the key.
func requestFields(t reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			panic(fmt.Sprintf("gpucache: request %s has unexported field %s", t, f.Name))
		}
		fields = append(fields, f)
	}
	return fields
}
