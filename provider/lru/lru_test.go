package lru

import (
	"context"
	"testing"
	"time"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	p, err := New(2, func(k string) { evicted = append(evicted, k) })
	if err != nil {
		t.Fatal(err)
	}
	p.Set(ctx, "a", []byte("1"), 1, 0)
	p.Set(ctx, "b", []byte("2"), 1, 0)
	if _, ok, _ := p.Get(ctx, "a"); !ok {
		t.Fatal("a missing")
	}
	p.Set(ctx, "c", []byte("3"), 1, 0)

	if _, ok, _ := p.Get(ctx, "b"); ok {
		t.Fatal("b should have been evicted")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v", evicted)
	}
	if p.Len() != 2 {
		t.Fatalf("Len = %d", p.Len())
	}
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	p, _ := New(4, nil)
	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	p.Set(ctx, "k", []byte("v"), 1, time.Minute)
	if v, ok, _ := p.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("got %q %v", v, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatal("expired entry returned")
	}
	if p.Len() != 0 {
		t.Fatal("expired entry not removed")
	}
}

func TestRejectsZeroSize(t *testing.T) {
	if _, err := New(0, nil); err == nil {
		t.Fatal("expected error")
	}
}
