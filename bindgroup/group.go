package bindgroup

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/unkn0wn-root/gpucache/gpukey"
	"github.com/unkn0wn-root/gpucache/ityp"
)

var (
	ErrEntryCount      = errors.New("bindgroup: entry count does not match layout")
	ErrUnknownBinding  = errors.New("bindgroup: binding not in layout")
	ErrResourceType    = errors.New("bindgroup: resource does not match binding type")
	ErrBindingRepeated = errors.New("bindgroup: binding set twice")
)

// BindGroup holds one resource per layout binding, in binding order. It is
// owned by its layout's pool and must be returned with ReleaseBindGroup.
type BindGroup struct {
	layout    *Layout
	resources ityp.Vec[BindingIndex, gputypes.BindingResource]
}

func (g *BindGroup) Layout() *Layout { return g.layout }

func (g *BindGroup) Resource(i BindingIndex) gputypes.BindingResource { return g.resources.At(i) }

// AllocateBindGroup validates entries against l and takes a bind group from
// the pool. Every layout binding must be set exactly once.
func (l *Layout) AllocateBindGroup(entries []gputypes.BindGroupEntry) (*BindGroup, error) {
	n := l.entries.Len()
	if len(entries) != int(n) {
		return nil, fmt.Errorf("%w: got %d, layout has %d", ErrEntryCount, len(entries), n)
	}
	res := ityp.NewVec[BindingIndex, gputypes.BindingResource](n)
	for _, e := range entries {
		i, ok := l.index[BindingNumber(e.Binding)]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownBinding, e.Binding)
		}
		if res.At(i) != nil {
			return nil, fmt.Errorf("%w: %d", ErrBindingRepeated, e.Binding)
		}
		if !resourceMatches(l.types.At(i), e.Resource) {
			return nil, fmt.Errorf("%w: binding %d is a %s, got %T", ErrResourceType, e.Binding, l.types.At(i), e.Resource)
		}
		res.Set(i, e.Resource)
	}

	l.mu.Lock()
	g := l.pool.Allocate()
	l.mu.Unlock()
	g.layout, g.resources = l, res
	return g, nil
}

// ReleaseBindGroup returns g to the pool. g must not be used afterwards.
// Releasing a group from another layout panics.
func (l *Layout) ReleaseBindGroup(g *BindGroup) {
	if g.layout != l {
		panic("bindgroup: ReleaseBindGroup on a group from another layout")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool.Deallocate(g)
}

func resourceMatches(t gpukey.BindingType, r gputypes.BindingResource) bool {
	switch r.(type) {
	case gputypes.BufferBinding, *gputypes.BufferBinding:
		return t == gpukey.BindingTypeBuffer
	case gputypes.SamplerBinding, *gputypes.SamplerBinding:
		return t == gpukey.BindingTypeSampler
	case gputypes.TextureViewBinding, *gputypes.TextureViewBinding:
		return t == gpukey.BindingTypeTexture || t == gpukey.BindingTypeStorageTexture
	}
	return false
}
