// Package asynchook moves hook delivery off the cache's hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // log ~every 10th self-heal
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	dev, _ := gpucache.New(gpucache.Options{
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

// Hooks forwards events to an inner Hooks from a bounded queue. Events that
// arrive while the queue is full, or after Close, are dropped and counted.
type Hooks struct {
	inner gpucache.Hooks
	q     chan func()
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ gpucache.Hooks = (*Hooks)(nil)

func New(inner gpucache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for range workers {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Safe to call twice.
func (h *Hooks) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.q)
	h.mu.Unlock()
	h.wg.Wait()
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) HitDecodeFailed(t cachekey.Type, err error) {
	h.try(func() { h.inner.HitDecodeFailed(t, err) })
}
func (h *Hooks) BlobSelfHeal(k, r string)         { h.try(func() { h.inner.BlobSelfHeal(k, r) }) }
func (h *Hooks) ProviderError(op string, e error) { h.try(func() { h.inner.ProviderError(op, e) }) }
func (h *Hooks) StoreRejected(k string)           { h.try(func() { h.inner.StoreRejected(k) }) }
