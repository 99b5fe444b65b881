package gpucache

import (
	"context"

	"github.com/unkn0wn-root/gpucache/codec"
)

// LoadOrCreate returns the cached result for req on d, or runs create.
//
// A blob that cd cannot decode is logged, reported through
// Hooks.HitDecodeFailed and treated as a miss; only create's error is
// returned. create should depend on nothing but its argument (see Call).
func LoadOrCreate[R CacheRequest, T any](
	ctx context.Context,
	d *Device,
	req R,
	cd codec.Codec[T],
	create func(R) (T, error),
) (*CacheResult[T], error) {
	key := CreateCacheKey(d, req)

	if blob := d.blobs.Load(ctx, key); !blob.Empty() {
		v, err := cd.Decode(blob)
		if err == nil {
			return &CacheResult[T]{key: key, value: v, cached: true}, nil
		}
		d.log.Warn("cached blob failed to decode; recomputing", Fields{
			"type": req.CacheKeyType().String(),
			"key":  key.Short(),
			"err":  err,
		})
		d.hooks.HitDecodeFailed(req.CacheKeyType(), err)
	}

	v, err := create(req)
	if err != nil {
		return nil, err
	}
	return &CacheResult[T]{key: key, value: v, blobs: d.blobs, codec: cd}, nil
}

// Infallible adapts a create function that cannot fail.
func Infallible[R, T any](fn func(R) T) func(R) (T, error) {
	return func(r R) (T, error) { return fn(r), nil }
}
