// Package sloghooks implements gpucache.Hooks by logging each event with
// log/slog. Noisy events can be sampled and storage keys are redacted.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/gpucache"
	"github.com/unkn0wn-root/gpucache/cachekey"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery    uint64
	DecodeFailEvery  uint64
	StoreRejectEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr    atomic.Uint64
	decodeFailCtr  atomic.Uint64
	storeRejectCtr atomic.Uint64
}

var _ gpucache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) HitDecodeFailed(t cachekey.Type, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailEvery, &h.decodeFailCtr) {
		return
	}
	h.l.Warn("gpucache.hit_decode_failed",
		"type", t.String(),
		"err", err)
}

func (h *Hooks) BlobSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("gpucache.blob_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("gpucache.provider_error",
		"op", op,
		"err", err)
}

func (h *Hooks) StoreRejected(storageKey string) {
	if h.l == nil || !sample(h.opts.StoreRejectEvery, &h.storeRejectCtr) {
		return
	}
	h.l.Warn("gpucache.store_rejected",
		"key", h.redact(storageKey))
}
