// Package lru keeps blobs in a bounded in-process LRU. It suits a single
// process that recompiles the same pipelines across frames or windows.
package lru

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2"

	pr "github.com/unkn0wn-root/gpucache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Provider struct {
	c   *lru.Cache[string, entry]
	now func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

// New returns a provider holding at most size entries. onEvict, if non-nil,
// is called with the key of every entry the LRU drops for capacity.
func New(size int, onEvict func(key string)) (*Provider, error) {
	if size <= 0 {
		return nil, errors.New("lru: size must be positive")
	}
	var evict func(string, entry)
	if onEvict != nil {
		evict = func(k string, _ entry) { onEvict(k) }
	}
	c, err := lru.NewWithEvict[string, entry](size, evict)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && p.now().After(e.exp) {
		p.c.Remove(key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	e := entry{v: value}
	if ttl > 0 {
		e.exp = p.now().Add(ttl)
	}
	p.c.Add(key, e)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Remove(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Purge()
	return nil
}

func (p *Provider) Len() int { return p.c.Len() }
