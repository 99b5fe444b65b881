package gpucache

import "github.com/unkn0wn-root/gpucache/cachekey"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A blob was found but the codec rejected it; the value was recomputed.
	HitDecodeFailed(t cachekey.Type, err error)

	// An entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "key_mismatch"}
	BlobSelfHeal(storageKey, reason string)

	// The provider returned an error. op ∈ {"get", "set", "del", "close"}
	ProviderError(op string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	StoreRejected(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) HitDecodeFailed(cachekey.Type, error) {}
func (NopHooks) BlobSelfHeal(string, string)          {}
func (NopHooks) ProviderError(string, error)          {}
func (NopHooks) StoreRejected(string)                 {}
