// Package cachekey builds deterministic cache keys.
//
// A Generator records values into a byte key. Every recorded member is
// preceded by a small member id, so that Record("ab", "c") and
// Record("a", "bc") never collide and adding or reordering fields changes the
// key. Values are encoded with package serde; types that need an explicit
// field list implement Recorder or install one with Register.
package cachekey

import (
	"bytes"
	"encoding/hex"

	"github.com/unkn0wn-root/gpucache/serde"
)

// Key is the recorded identity of a cacheable computation. Keys are opaque
// and only comparable within one build on one machine.
type Key []byte

// SerializeTo writes k length-prefixed, so keys can be recorded inside other
// keys.
func (k Key) SerializeTo(s serde.Sink) { serde.Serialize(s, []byte(k)) }

func (k *Key) DeserializeFrom(src serde.Source) error {
	var b []byte
	if err := serde.Deserialize(src, &b); err != nil {
		return err
	}
	*k = b
	return nil
}

func (k Key) Equal(o Key) bool { return bytes.Equal(k, o) }

func (k Key) String() string { return hex.EncodeToString(k) }

// Short returns a hex prefix suitable for logs.
func (k Key) Short() string {
	if len(k) > 8 {
		return hex.EncodeToString(k[:8])
	}
	return hex.EncodeToString(k)
}
