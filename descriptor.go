package gpucache

import (
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/unkn0wn-root/gpucache/cachekey"
	"github.com/unkn0wn-root/gpucache/serde"
)

// Extension structs accepted in DeviceDescriptor.NextInChain.
const (
	STypeToggles serde.SType = iota + 1
	STypeCacheDevice
)

var deviceChain = []serde.SType{STypeToggles, STypeCacheDevice}

// DeviceDescriptor mirrors gputypes.DeviceDescriptor plus an extension
// chain. Label and MemoryHints do not affect cached results and are not keyed.
type DeviceDescriptor struct {
	Label            string
	RequiredFeatures []gputypes.Feature
	RequiredLimits   gputypes.Limits
	MemoryHints      gputypes.MemoryHints
	NextInChain      serde.Chained
}

// DescriptorFrom copies d and attaches chain.
func DescriptorFrom(d gputypes.DeviceDescriptor, chain serde.Chained) DeviceDescriptor {
	return DeviceDescriptor{
		Label:            d.Label,
		RequiredFeatures: d.RequiredFeatures,
		RequiredLimits:   d.RequiredLimits,
		MemoryHints:      d.MemoryHints,
		NextInChain:      chain,
	}
}

func (d DeviceDescriptor) RecordCacheKey(g *cachekey.Generator) {
	features := slices.Compact(slices.Sorted(slices.Values(d.RequiredFeatures)))
	g.Record(features, d.RequiredLimits)
	serde.SerializeChain(g.Sub(), d.NextInChain, deviceChain...)
}

// TogglesDescriptor enables or disables named device toggles. Toggle order
// does not matter.
type TogglesDescriptor struct {
	Enabled  []string
	Disabled []string
	Next     serde.Chained
}

func (*TogglesDescriptor) SType() serde.SType           { return STypeToggles }
func (t *TogglesDescriptor) NextInChain() serde.Chained { return t.Next }

func (t TogglesDescriptor) SerializeTo(s serde.Sink) {
	serde.Serialize(s, sortedSet(t.Enabled), sortedSet(t.Disabled))
}

// CacheDeviceDescriptor partitions the cache: devices with different
// isolation keys never share entries.
type CacheDeviceDescriptor struct {
	IsolationKey string
	Next         serde.Chained
}

func (*CacheDeviceDescriptor) SType() serde.SType           { return STypeCacheDevice }
func (c *CacheDeviceDescriptor) NextInChain() serde.Chained { return c.Next }

func (c CacheDeviceDescriptor) SerializeTo(s serde.Sink) { serde.Serialize(s, c.IsolationKey) }

func sortedSet(ss []string) []string {
	return slices.Compact(slices.Sorted(slices.Values(ss)))
}
