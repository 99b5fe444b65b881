// Package bindgroup builds bind group layouts with content-derived cache keys
// and pools the bind groups created from them.
//
// A Layout sorts its entries by binding number and gives each a dense
// BindingIndex. Bind groups made from a layout come from the layout's own
// slab allocator, since applications create and drop them every frame.
package bindgroup

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/unkn0wn-root/gpucache/cachekey"
	"github.com/unkn0wn-root/gpucache/gpukey"
	"github.com/unkn0wn-root/gpucache/ityp"
	"github.com/unkn0wn-root/gpucache/slab"
)

// BindingIndex is an entry's position in binding order. Binding numbers are
// sparse and chosen by the shader author; binding indices are dense.
type BindingIndex uint32

// BindingNumber is the @binding value from the shader.
type BindingNumber uint32

var (
	ErrDuplicateBinding = errors.New("bindgroup: duplicate binding number")
	ErrTooManyBindings  = errors.New("bindgroup: too many bindings")
)

// DefaultSlabCount is the bind groups per slab used when NewLayout gets 0.
const DefaultSlabCount = 64

// MaxBindings is the WebGPU default for maxBindingsPerBindGroup and the
// most entries a Layout accepts.
const MaxBindings = 1000

type maxBindings struct{}

func (maxBindings) Size() int { return MaxBindings }

// Layout is an immutable, validated bind group layout. Its methods are safe
// for concurrent use.
type Layout struct {
	key     cachekey.Key
	token   uint64
	entries ityp.Vec[BindingIndex, gputypes.BindGroupLayoutEntry]
	types   ityp.Vec[BindingIndex, gpukey.BindingType]
	index   map[BindingNumber]BindingIndex
	dynamic ityp.Bitset[BindingIndex, maxBindings]

	mu   sync.Mutex
	pool *slab.Allocator[BindGroup]
}

// NewLayout validates desc and builds an explicit layout. slabCount is the
// number of bind groups per pool slab; 0 selects DefaultSlabCount.
func NewLayout(desc gputypes.BindGroupLayoutDescriptor, slabCount uint16) (*Layout, error) {
	return newLayout(desc, slabCount, 0)
}

func newLayout(desc gputypes.BindGroupLayoutDescriptor, slabCount uint16, token uint64) (*Layout, error) {
	if slabCount == 0 {
		slabCount = DefaultSlabCount
	}
	if n := len(desc.Entries); n > MaxBindings || n > int(gputypes.DefaultLimits().MaxBindingsPerBindGroup) {
		return nil, fmt.Errorf("%w: %d", ErrTooManyBindings, len(desc.Entries))
	}

	sorted := slices.SortedFunc(slices.Values(desc.Entries), func(a, b gputypes.BindGroupLayoutEntry) int {
		return cmp.Compare(a.Binding, b.Binding)
	})
	n := BindingIndex(len(sorted))
	l := &Layout{
		token:   token,
		entries: ityp.VecOf[BindingIndex](sorted),
		types:   ityp.NewVec[BindingIndex, gpukey.BindingType](n),
		index:   make(map[BindingNumber]BindingIndex, n),
		pool:    slab.New[BindGroup](slabCount),
	}
	for i, e := range l.entries.All() {
		if _, dup := l.index[BindingNumber(e.Binding)]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateBinding, e.Binding)
		}
		t, err := gpukey.EntryBindingType(e)
		if err != nil {
			return nil, err
		}
		l.index[BindingNumber(e.Binding)] = i
		l.types.Set(i, t)
		l.dynamic.Set(i, t == gpukey.BindingTypeBuffer && e.Buffer.HasDynamicOffset)
	}

	g := cachekey.NewGenerator().Record(cachekey.TypeBindGroupLayout, l.token)
	g.RecordIterable(sorted)
	l.key = g.Key()
	return l, nil
}

// CacheKey is equal for layouts with the same entries in any order. The
// descriptor label is not part of it.
func (l *Layout) CacheKey() cachekey.Key { return l.key }

func (l *Layout) BindingCount() BindingIndex { return l.entries.Len() }

func (l *Layout) Entry(i BindingIndex) gputypes.BindGroupLayoutEntry { return l.entries.At(i) }

func (l *Layout) BindingType(i BindingIndex) gpukey.BindingType { return l.types.At(i) }

// BindingIndex maps a binding number to its dense index.
func (l *Layout) BindingIndex(b BindingNumber) (BindingIndex, bool) {
	i, ok := l.index[b]
	return i, ok
}

// DynamicOffsets returns, in binding order, the indices of buffer bindings
// that take a dynamic offset.
func (l *Layout) DynamicOffsets() []BindingIndex {
	return slices.Collect(l.dynamic.Ones())
}

func (l *Layout) DynamicOffsetCount() int { return l.dynamic.Count() }

// Compatible reports whether bind groups of o may be used where l is
// expected.
func (l *Layout) Compatible(o *Layout) bool { return l == o || l.key.Equal(o.key) }

// PoolStats reports the layout's bind group pool.
func (l *Layout) PoolStats() slab.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool.Stats()
}
