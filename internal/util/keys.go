package util

import (
	"crypto/sha256"
	"fmt"
)

// StorageKey maps a cache key to a provider key: blob:<ns>:<sha256 hex>.
// Cache keys are arbitrary binary and can be long; the hash keeps provider
// keys printable and bounded.
func StorageKey(ns string, key []byte) string {
	return fmt.Sprintf("blob:%s:%x", ns, sha256.Sum256(key))
}
