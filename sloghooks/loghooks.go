package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/bookcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery     uint64
	MissEvery    uint64
	DiscardEvery uint64
	// Optional key redactor. Defaults to the key itself; keys carry no user data.
	// Set HashKeys to log a SHA-256 prefix instead.
	Redact   func(string) string
	HashKeys bool
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr     atomic.Uint64
	missCtr    atomic.Uint64
	discardCtr atomic.Uint64
}

var _ bookcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	if !h.opts.HashKeys {
		return k
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

func (h *Hooks) CacheHit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("bookcache.hit",
		"key", h.redact(key),
		"family", bookcache.KeyFamily(key))
}

func (h *Hooks) CacheMiss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("bookcache.miss",
		"key", h.redact(key),
		"family", bookcache.KeyFamily(key))
}

func (h *Hooks) CacheUnavailable(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("bookcache.unavailable",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) EntryDiscarded(key, reason string) {
	if h.l == nil || !sample(h.opts.DiscardEvery, &h.discardCtr) {
		return
	}
	h.l.Info("bookcache.entry_discarded",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) SetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("bookcache.set_rejected",
		"key", h.redact(key))
}

func (h *Hooks) InvalidateFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("bookcache.invalidate_failed",
		"key", h.redact(key),
		"err", err)
}
