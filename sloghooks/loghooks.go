// Package sloghooks logs cache mutation events through log/slog.
// Set/remove events can flood at high write rates, so they are sampled;
// evictions are the high-signal events and default to logging every one.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tiercache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SetEvery   uint64
	EvictEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix so raw keys
	// never reach the log stream.
	Redact func(string) string
}

type Hooks[K comparable] struct {
	l    *slog.Logger
	opts Options

	setCtr   atomic.Uint64
	evictCtr atomic.Uint64
}

var _ tiercache.Hooks[string] = (*Hooks[string])(nil)

func New[K comparable](l *slog.Logger, opts Options) *Hooks[K] {
	return &Hooks[K]{l: l, opts: opts}
}

func (h *Hooks[K]) redact(key K) string {
	s := fmt.Sprint(key)
	if h.opts.Redact != nil {
		return h.opts.Redact(s)
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks[K]) EntrySet(key K) {
	if h.l == nil || !sample(h.opts.SetEvery, &h.setCtr) {
		return
	}
	h.l.Debug("tiercache.entry_set", "key", h.redact(key))
}

func (h *Hooks[K]) EntryRemoved(key K) {
	if h.l == nil {
		return
	}
	h.l.Debug("tiercache.entry_removed", "key", h.redact(key))
}

func (h *Hooks[K]) EntryEvicted(key K, reason tiercache.EvictReason) {
	if h.l == nil || !sample(h.opts.EvictEvery, &h.evictCtr) {
		return
	}
	h.l.Info("tiercache.entry_evicted",
		"key", h.redact(key),
		"reason", string(reason))
}
