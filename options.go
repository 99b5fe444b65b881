package gpucache

import (
	"time"

	"github.com/gogpu/gputypes"
	pr "github.com/unkn0wn-root/gpucache/provider"
)

const defaultNamespace = "gpucache"

// Options configure a Device. The zero value is a usable device with no
// blob store: every lookup misses and EnsureStored is a no-op.
type Options struct {
	// Adapter and Descriptor identify the device; both are part of every key.
	Adapter    gputypes.AdapterInfo
	Descriptor DeviceDescriptor

	// Blob store. Cache takes precedence; otherwise a ProviderCache is built
	// over Provider. The device closes a Provider it wrapped itself.
	Cache     CachingInterface
	Provider  pr.Provider
	Namespace string        // provider key namespace; "" => "gpucache"
	BlobTTL   time.Duration // 0 => no expiry

	Logger   Logger // if nil, NopLogger is used
	Hooks    Hooks  // if nil, NopHooks is used
	Disabled bool   // default false (enabled)
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
