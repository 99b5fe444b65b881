package gpukey

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

// BindingType names which of the four layouts a bind group layout entry uses.
type BindingType uint8

const (
	BindingTypeBuffer BindingType = iota
	BindingTypeSampler
	BindingTypeTexture
	BindingTypeStorageTexture
)

func (t BindingType) String() string {
	switch t {
	case BindingTypeBuffer:
		return "buffer"
	case BindingTypeSampler:
		return "sampler"
	case BindingTypeTexture:
		return "texture"
	case BindingTypeStorageTexture:
		return "storage-texture"
	}
	return fmt.Sprintf("BindingType(%d)", uint8(t))
}

var ErrBindingType = errors.New("gpukey: entry must set exactly one binding layout")

// EntryBindingType reports the single layout set on e.
func EntryBindingType(e gputypes.BindGroupLayoutEntry) (BindingType, error) {
	var (
		t BindingType
		n int
	)
	if e.Buffer != nil {
		t, n = BindingTypeBuffer, n+1
	}
	if e.Sampler != nil {
		t, n = BindingTypeSampler, n+1
	}
	if e.Texture != nil {
		t, n = BindingTypeTexture, n+1
	}
	if e.StorageTexture != nil {
		t, n = BindingTypeStorageTexture, n+1
	}
	if n != 1 {
		return 0, fmt.Errorf("%w: binding %d has %d", ErrBindingType, e.Binding, n)
	}
	return t, nil
}

// The four layout pointers are recorded with their presence flags, which
// already encode the binding type.
func recordBindGroupLayoutEntry(g *cachekey.Generator, e gputypes.BindGroupLayoutEntry) {
	g.Record(e.Binding, e.Visibility, e.Buffer, e.Sampler, e.Texture, e.StorageTexture)
}

func recordBufferBindingLayout(g *cachekey.Generator, b gputypes.BufferBindingLayout) {
	g.Record(b.Type, b.HasDynamicOffset, b.MinBindingSize)
}

func recordSamplerBindingLayout(g *cachekey.Generator, s gputypes.SamplerBindingLayout) {
	g.Record(s.Type)
}

func recordTextureBindingLayout(g *cachekey.Generator, t gputypes.TextureBindingLayout) {
	g.Record(t.SampleType, t.ViewDimension, t.Multisampled)
}

func recordStorageTextureBindingLayout(g *cachekey.Generator, t gputypes.StorageTextureBindingLayout) {
	g.Record(t.Access, t.Format, t.ViewDimension)
}

func recordPushConstantRange(g *cachekey.Generator, r gputypes.PushConstantRange) {
	g.Record(r.Stages, r.Start, r.End)
}

func recordSamplerDescriptor(g *cachekey.Generator, s gputypes.SamplerDescriptor) {
	g.Record(s.AddressModeU, s.AddressModeV, s.AddressModeW,
		s.MagFilter, s.MinFilter, s.MipmapFilter,
		s.LodMinClamp, s.LodMaxClamp, s.Compare, s.MaxAnisotropy)
}
