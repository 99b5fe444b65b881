package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

type counting struct {
	gpucache.NopHooks
	mu    sync.Mutex
	heals int
	block chan struct{}
}

func (c *counting) BlobSelfHeal(string, string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.heals++
	c.mu.Unlock()
}

func TestCloseDrainsQueue(t *testing.T) {
	inner := &counting{}
	h := New(inner, 2, 16)
	for range 10 {
		h.BlobSelfHeal("k", "corrupt")
	}
	h.HitDecodeFailed(cachekey.TypeShaderModule, errors.New("x"))
	h.Close()
	h.Close()

	if inner.heals != 10 {
		t.Fatalf("delivered %d events, want 10", inner.heals)
	}
	h.StoreRejected("late")
	if h.Dropped() != 1 {
		t.Fatalf("Dropped = %d after Close, want 1", h.Dropped())
	}
}

func TestFullQueueDrops(t *testing.T) {
	inner := &counting{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker takes the first event and blocks; the second fills the queue
	h.BlobSelfHeal("a", "corrupt")
	for h.Dropped() == 0 {
		h.BlobSelfHeal("b", "corrupt")
	}
	close(inner.block)
	h.Close()

	if got := uint64(inner.heals) + h.Dropped(); got < 3 {
		t.Fatalf("delivered+dropped = %d", got)
	}
}
