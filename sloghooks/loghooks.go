// Package sloghooks reports cache diagnostics through log/slog.
package sloghooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/aimcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	BackendErrorEvery uint64
	CodecErrorEvery   uint64
	// Hits and misses are only logged when set; they are very chatty.
	LogReads bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
	// SkipConnection drops connection events, for when the cache Logger
	// writes to the same sink.
	SkipConnection bool
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	backendCtr atomic.Uint64
	codecCtr   atomic.Uint64
}

var _ aimcache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) InvalidKey(op string) {
	if h.l == nil {
		return
	}
	h.l.Debug("aimcache.invalid_key", "op", op)
}

func (h *Hooks) BackendError(op, key string, err error) {
	if h.l == nil || !sample(h.opts.BackendErrorEvery, &h.backendCtr) {
		return
	}
	h.l.Warn("aimcache.backend_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) CodecError(op, key string, err error) {
	if h.l == nil || !sample(h.opts.CodecErrorEvery, &h.codecCtr) {
		return
	}
	h.l.Warn("aimcache.codec_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) FallbackFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("aimcache.fallback_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) ExpireFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("aimcache.expire_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) Hit(op, key string) {
	if h.l == nil || !h.opts.LogReads {
		return
	}
	h.l.Debug("aimcache.hit", "op", op, "key", h.redact(key))
}

func (h *Hooks) Miss(op, key string) {
	if h.l == nil || !h.opts.LogReads {
		return
	}
	h.l.Debug("aimcache.miss", "op", op, "key", h.redact(key))
}

func (h *Hooks) Connection(event, addr string, err error) {
	if h.l == nil || h.opts.SkipConnection {
		return
	}
	level := slog.LevelInfo
	switch event {
	case "reconnecting":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	attrs := []any{"event", event}
	if addr != "" {
		attrs = append(attrs, "addr", addr)
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	h.l.Log(context.Background(), level, "aimcache.connection", attrs...)
}
