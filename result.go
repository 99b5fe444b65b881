package gpucache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/gpucache/cachekey"
	"github.com/unkn0wn-root/gpucache/codec"
)

// CacheResult is a value together with the key it was cached under and
// whether it came from the cache. A result created on a miss keeps a
// reference to the device's blob cache so EnsureStored can persist it later.
//
// A CacheResult is not safe for concurrent use.
type CacheResult[T any] struct {
	key      cachekey.Key
	value    T
	cached   bool
	acquired bool

	blobs *BlobCache
	codec codec.Codec[T]
}

func (r *CacheResult[T]) IsCached() bool { return r.cached }

func (r *CacheResult[T]) CacheKey() cachekey.Key { return r.key }

// Value returns the held value. It panics after Acquire.
func (r *CacheResult[T]) Value() T {
	r.mustHold("Value")
	return r.value
}

// Acquire moves the value out. Any later Value, Acquire or EnsureStored
// panics.
func (r *CacheResult[T]) Acquire() T {
	r.mustHold("Acquire")
	v := r.value
	var zero T
	r.value = zero
	r.acquired = true
	return v
}

// EnsureStored encodes and stores the value if it did not come from the
// cache. It is a no-op once stored, on a hit, or when the device has no blob
// store. Only encoding errors are returned; a store the provider rejects is
// reported through logs and hooks and still counts as stored.
func (r *CacheResult[T]) EnsureStored(ctx context.Context) error {
	if r.cached || r.blobs == nil {
		return nil
	}
	r.mustHold("EnsureStored")
	payload, err := r.codec.Encode(r.value)
	if err != nil {
		return fmt.Errorf("gpucache: encode %s: %w", r.key.Short(), err)
	}
	r.blobs.Store(ctx, r.key, payload)
	r.cached = true
	return nil
}

func (r *CacheResult[T]) mustHold(op string) {
	if r.acquired {
		panic("gpucache: CacheResult." + op + " after Acquire")
	}
}
