package gpucache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/gpucache/internal/util"
	"github.com/unkn0wn-root/gpucache/internal/wire"
	pr "github.com/unkn0wn-root/gpucache/provider"
)

// ProviderCache is a CachingInterface over a provider.Provider. Entries are
// stored under util.StorageKey with the full cache key framed in, so a hash
// collision or a foreign write reads as a miss and is deleted.
type ProviderCache struct {
	ns       string
	provider pr.Provider
	ttl      time.Duration
	log      Logger
	hooks    Hooks

	// last probe, reused by the fill that follows it
	mu        sync.Mutex
	lastKey   string
	lastValue []byte
}

var _ CachingInterface = (*ProviderCache)(nil)

func NewProviderCache(p pr.Provider, ns string, ttl time.Duration, log Logger, hooks Hooks) *ProviderCache {
	return &ProviderCache{
		ns:       coalesce(ns, defaultNamespace),
		provider: p,
		ttl:      ttl,
		log:      coalesce[Logger](log, NopLogger{}),
		hooks:    coalesce[Hooks](hooks, NopHooks{}),
	}
}

func (c *ProviderCache) LoadData(ctx context.Context, key, value []byte) int {
	sk := util.StorageKey(c.ns, key)
	var (
		payload []byte
		ok      bool
	)
	if value != nil {
		payload, ok = c.take(sk)
	}
	if !ok {
		payload, ok = c.get(ctx, sk, key)
		if !ok {
			return 0
		}
		if value == nil {
			c.stash(sk, payload)
		}
	}
	if value == nil {
		return len(payload)
	}
	return copy(value, payload)
}

func (c *ProviderCache) StoreData(ctx context.Context, key, value []byte) bool {
	sk := util.StorageKey(c.ns, key)
	c.take(sk)

	raw := wire.EncodeBlob(key, value)
	ok, err := c.provider.Set(ctx, sk, raw, int64(len(raw)), c.ttl)
	if err != nil {
		c.log.Warn("provider set failed", Fields{"key": sk, "err": err})
		c.hooks.ProviderError("set", err)
		return false
	}
	if !ok {
		c.log.Debug("store rejected by provider (pressure)", Fields{"key": sk})
		c.hooks.StoreRejected(sk)
	}
	return ok
}

func (c *ProviderCache) Close(ctx context.Context) error {
	c.stash("", nil)
	return c.provider.Close(ctx)
}

func (c *ProviderCache) get(ctx context.Context, sk string, key []byte) ([]byte, bool) {
	raw, ok, err := c.provider.Get(ctx, sk)
	if err != nil {
		c.log.Warn("provider get failed", Fields{"key": sk, "err": err})
		c.hooks.ProviderError("get", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	stored, payload, err := wire.DecodeBlob(raw)
	if err != nil {
		c.selfHeal(ctx, sk, "corrupt")
		return nil, false
	}
	if !bytes.Equal(stored, key) {
		c.selfHeal(ctx, sk, "key_mismatch")
		return nil, false
	}
	return payload, true
}

func (c *ProviderCache) selfHeal(ctx context.Context, sk, reason string) {
	if err := c.provider.Del(ctx, sk); err != nil {
		c.hooks.ProviderError("del", err)
	}
	c.log.Debug("deleted unreadable blob entry", Fields{"key": sk, "reason": reason})
	c.hooks.BlobSelfHeal(sk, reason)
}

func (c *ProviderCache) stash(sk string, payload []byte) {
	c.mu.Lock()
	c.lastKey, c.lastValue = sk, payload
	c.mu.Unlock()
}

// take returns and clears the stashed payload for sk.
func (c *ProviderCache) take(sk string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKey != sk || c.lastValue == nil {
		return nil, false
	}
	v := c.lastValue
	c.lastKey, c.lastValue = "", nil
	return v, true
}
