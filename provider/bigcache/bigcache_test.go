package bigcache

import (
	"context"
	"testing"
	"time"
)

func TestRoundTripAndSizeLimit(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute, MaxBlobSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close(ctx)

	if ok, err := p.Set(ctx, "k", []byte("small"), 5, 0); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if v, ok, err := p.Get(ctx, "k"); !ok || err != nil || string(v) != "small" {
		t.Fatalf("Get = %q %v %v", v, ok, err)
	}
	if ok, _ := p.Set(ctx, "big", []byte("much too large"), 14, 0); ok {
		t.Fatal("oversized blob accepted")
	}
	if err := p.Del(ctx, "missing"); err != nil {
		t.Fatalf("Del of missing key: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len = %d", p.Len())
	}
}
