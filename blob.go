package gpucache

import (
	"bytes"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/gpucache/cachekey"
)

// Blob is an opaque cached value. An empty Blob means "not found".
type Blob []byte

func (b Blob) Empty() bool { return len(b) == 0 }

// CachingInterface is the persistent store behind a BlobCache.
//
// LoadData with value == nil returns the stored size for key (0 if absent).
// With a non-nil value it copies up to len(value) bytes and returns the count
// written. StoreData reports whether the value was accepted.
// Implementations must be safe for concurrent use.
type CachingInterface interface {
	LoadData(ctx context.Context, key, value []byte) int
	StoreData(ctx context.Context, key, value []byte) bool
}

// BlobCache wraps a CachingInterface with the probe/fill protocol. A nil
// *BlobCache is valid and never hits.
type BlobCache struct {
	impl CachingInterface
	log  Logger

	// mu keeps a probe and its fill together so a concurrent store cannot
	// change the size in between.
	mu sync.Mutex
	sf singleflight.Group
}

func NewBlobCache(impl CachingInterface, log Logger) *BlobCache {
	if impl == nil {
		return nil
	}
	return &BlobCache{impl: impl, log: coalesce[Logger](log, NopLogger{})}
}

// Load probes the size of key's blob, then fills a buffer of that size.
// Concurrent loads of one key share a single probe/fill.
func (c *BlobCache) Load(ctx context.Context, key cachekey.Key) Blob {
	if c == nil {
		return nil
	}
	v, _, shared := c.sf.Do(string(key), func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		n := c.impl.LoadData(ctx, key, nil)
		if n <= 0 {
			return Blob(nil), nil
		}
		buf := make([]byte, n)
		if got := c.impl.LoadData(ctx, key, buf); got != n {
			c.log.Debug("blob fill size differs from probe", Fields{"key": key.Short(), "probe": n, "fill": got})
			return Blob(nil), nil
		}
		return Blob(buf), nil
	})
	b := v.(Blob)
	if shared && b != nil {
		b = bytes.Clone(b)
	}
	return b
}

// Store persists value under key.
func (c *BlobCache) Store(ctx context.Context, key cachekey.Key, value []byte) bool {
	if c == nil || len(value) == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.impl.StoreData(ctx, key, value)
}
