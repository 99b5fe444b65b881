package cachekey

import "github.com/unkn0wn-root/gpucache/serde"

func init() {
	serde.Register(func(s serde.Sink, r Recorder) { r.RecordCacheKey(nested(s)) }, nil)
}

// Register installs fn as the recorder for T, for types that cannot carry a
// RecordCacheKey method (structs from other modules, or interfaces). fn
// should record every field that affects the cached output, in a fixed
// order, and skip handles to objects that have their own keys.
//
// The recorder also becomes T's serde encoding, so T can appear inside
// slices, pointers and other recorded values. Register panics if T already
// has a registered encoding.
func Register[T any](fn func(g *Generator, v T)) {
	serde.Register(func(s serde.Sink, v T) { fn(nested(s), v) }, nil)
}
