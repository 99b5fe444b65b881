// Package gpucache caches the results of expensive GPU object creation
// (shader compilation, pipeline and layout setup) in a persistent blob store.
//
// A cacheable operation is described by a request struct whose exported
// fields are every input that can change the result. The request is recorded
// into a cachekey.Key together with the device key and a per-request Type:
//
//	key = Record(deviceKey, requestType, field0, field1, ...)
//
// LoadOrCreate looks the key up in the device's blob cache. On a hit the blob
// is decoded with a codec.Codec; if decoding fails the error is logged and
// the result is recomputed, so a corrupt cache only costs time. On a miss the
// create function runs and the returned CacheResult can later be persisted
// with EnsureStored.
//
// Components:
//   - CachingInterface: two-phase blob store (probe size, then fill).
//   - ProviderCache: CachingInterface over a provider.Provider (Ristretto,
//     BigCache, Redis, LRU, file).
//   - Codec[T]: (de)serializes cached values <-> []byte.
//
// Storage keys:
//
//	blob:<ns>:<sha256(cache key)>
package gpucache
