package gpucache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/gpucache/cachekey"
	_ "github.com/unkn0wn-root/gpucache/gpukey" // gputypes recorders
	"github.com/unkn0wn-root/gpucache/serde"
)

// Device owns the device cache key and the blob cache that requests made on
// the device go through. It outlives every CacheResult created from it.
type Device struct {
	key   cachekey.Key
	blobs *BlobCache
	log   Logger
	hooks Hooks

	owned *ProviderCache // built from Options.Provider, closed by Close
}

func New(opts Options) (*Device, error) {
	if err := serde.ValidateChain(opts.Descriptor.NextInChain, deviceChain...); err != nil {
		return nil, fmt.Errorf("gpucache: device descriptor: %w", err)
	}

	d := &Device{
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	d.key = cachekey.NewGenerator().Record(opts.Adapter, opts.Descriptor).Key()

	if opts.Disabled {
		return d, nil
	}
	impl := opts.Cache
	if impl == nil && opts.Provider != nil {
		d.owned = NewProviderCache(opts.Provider, opts.Namespace, opts.BlobTTL, d.log, d.hooks)
		impl = d.owned
	}
	d.blobs = NewBlobCache(impl, d.log)
	return d, nil
}

// CacheKey identifies the adapter and device configuration. It prefixes
// every request key made on d.
func (d *Device) CacheKey() cachekey.Key { return d.key }

// BlobCache returns the device's blob cache, nil if caching is off.
func (d *Device) BlobCache() *BlobCache { return d.blobs }

func (d *Device) Enabled() bool { return d.blobs != nil }

func (d *Device) Close(ctx context.Context) error {
	if d.owned == nil {
		return nil
	}
	if err := d.owned.Close(ctx); err != nil {
		d.hooks.ProviderError("close", err)
		return err
	}
	return nil
}
