package aimcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/aimcache/backend"
	rb "github.com/unkn0wn-root/aimcache/backend/redis"
	"github.com/unkn0wn-root/aimcache/codec"
	"github.com/unkn0wn-root/aimcache/internal/util"
)

// conn is the backend a cache currently talks to.
type conn struct {
	b     backend.Backend
	owned bool // dialed by Run; closed by Close
}

type cache[V any] struct {
	cfg       Config
	codec     codec.Codec[V]
	log       Logger
	hooks     Hooks
	opTimeout time.Duration

	supplied backend.Backend // Options.Backend; reattached by Run after Close

	runMu sync.Mutex
	conn  atomic.Pointer[conn]
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.OpTimeout < 0 {
		return nil, fmt.Errorf("aimcache: negative op timeout %s", opts.OpTimeout)
	}

	c := &cache[V]{
		cfg: opts.Config.Resolve(opts.Env),
	}

	// defaults
	c.codec = coalesce[codec.Codec[V]](opts.Codec, codec.JSON[V]{})
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.opTimeout = coalesce(opts.OpTimeout, defaultOpTimeout)

	if opts.Backend != nil {
		c.supplied = opts.Backend
		c.conn.Store(&conn{b: opts.Backend})
	}
	return c, nil
}

func (c *cache[V]) Config() Config { return c.cfg }

func (c *cache[V]) Run(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.conn.Load() != nil {
		return nil
	}
	if c.supplied != nil {
		c.conn.Store(&conn{b: c.supplied})
		return nil
	}
	b, err := rb.Dial(ctx, rb.DialConfig{
		Addrs:        c.cfg.Addrs(),
		Password:     c.cfg.Password,
		Cluster:      c.cfg.Cluster,
		DialTimeout:  c.cfg.DialTimeout,
		ReadTimeout:  c.cfg.ReadTimeout,
		WriteTimeout: c.cfg.WriteTimeout,
		Observer:     c.observe,
	})
	if err != nil {
		return fmt.Errorf("aimcache: run: %w", err)
	}
	c.conn.Store(&conn{b: b, owned: true})
	return nil
}

func (c *cache[V]) Close(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	cn := c.conn.Swap(nil)
	if cn == nil || !cn.owned {
		return nil
	}
	return cn.b.Close(ctx)
}

// observe forwards connection lifecycle events; it never affects in-flight operations.
func (c *cache[V]) observe(e rb.Event) {
	f := Fields{"event": string(e.Kind)}
	if e.Addr != "" {
		f["addr"] = e.Addr
	}
	switch e.Kind {
	case rb.EventConnect:
		c.log.Info("cache connected", f)
	case rb.EventReady:
		c.log.Info("cache ready", f)
	case rb.EventReconnecting:
		c.log.Warn("cache lost connection, reconnecting", f)
	default:
		f["err"] = e.Err
		c.log.Error("cache connection error", f)
	}
	c.hooks.Connection(string(e.Kind), e.Addr, e.Err)
}

// do runs fn against the backend under the per-call timeout and reports
// failures. The returned error is for the caller to fold into its result.
func (c *cache[V]) do(ctx context.Context, op, key string, fn func(context.Context, backend.Backend) error) error {
	cn := c.conn.Load()
	if cn == nil {
		c.backendErr(op, key, ErrNotConnected)
		return ErrNotConnected
	}
	cctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	if err := fn(cctx, cn.b); err != nil {
		c.backendErr(op, key, err)
		return err
	}
	return nil
}

func (c *cache[V]) validKey(op, key string) bool {
	if util.ValidKey(key) {
		return true
	}
	c.hooks.InvalidKey(op)
	return false
}

func (c *cache[V]) backendErr(op, key string, err error) {
	c.log.Debug("cache backend call failed", Fields{"op": op, "key": key, "err": err})
	c.hooks.BackendError(op, key, err)
}

func (c *cache[V]) codecErr(op, key string, err error) {
	c.log.Debug("cache codec failed", Fields{"op": op, "key": key, "err": err})
	c.hooks.CodecError(op, key, err)
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool) {
	return c.get(ctx, "get", key)
}

func (c *cache[V]) get(ctx context.Context, op, key string) (V, bool) {
	var zero V
	if !c.validKey(op, key) {
		return zero, false
	}
	var (
		raw []byte
		ok  bool
	)
	err := c.do(ctx, op, key, func(ctx context.Context, b backend.Backend) (err error) {
		raw, ok, err = b.Get(ctx, key)
		return err
	})
	if err != nil {
		return zero, false
	}
	if !ok {
		c.hooks.Miss(op, key)
		return zero, false
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		// foreign or corrupt payload: report, never delete
		c.codecErr(op, key, err)
		return zero, false
	}
	if isNil(v) {
		// a stored null is an absent value
		c.hooks.Miss(op, key)
		return zero, false
	}
	c.hooks.Hit(op, key)
	return v, true
}

func (c *cache[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) bool {
	return c.put(ctx, "put", key, value, ttl)
}

func (c *cache[V]) put(ctx context.Context, op, key string, value V, ttl time.Duration) bool {
	if !c.validKey(op, key) {
		return false
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		c.codecErr(op, key, err)
		return false
	}
	err = c.do(ctx, op, key, func(ctx context.Context, b backend.Backend) error {
		return b.Set(ctx, key, payload, ttl)
	})
	return err == nil
}

func (c *cache[V]) Has(ctx context.Context, key string) bool {
	if !c.validKey("has", key) {
		return false
	}
	var exists bool
	err := c.do(ctx, "has", key, func(ctx context.Context, b backend.Backend) (err error) {
		exists, err = b.Exists(ctx, key)
		return err
	})
	// a failed EXISTS reads as absent: recompute rather than trust a false positive
	return err == nil && exists
}

func (c *cache[V]) Destroy(ctx context.Context, key string) {
	c.destroy(ctx, "destroy", key)
}

func (c *cache[V]) destroy(ctx context.Context, op, key string) {
	if !c.validKey(op, key) {
		return
	}
	_ = c.do(ctx, op, key, func(ctx context.Context, b backend.Backend) error {
		return b.Del(ctx, key)
	})
}

func (c *cache[V]) Pop(ctx context.Context, key string) (V, bool) {
	v, ok := c.get(ctx, "pop", key)
	if ok {
		c.destroy(ctx, "pop", key)
	}
	return v, ok
}

func (c *cache[V]) Remember(ctx context.Context, key string, ttl time.Duration, fallback Fallback[V]) (V, bool) {
	var zero V
	if !c.validKey("remember", key) {
		return zero, false
	}
	// a miss and a failed read take the same path
	if v, ok := c.get(ctx, "remember", key); ok {
		return v, true
	}

	v, ok, err := fallback.resolve(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoValue) {
			c.log.Debug("cache fallback failed", Fields{"key": key, "err": err})
			c.hooks.FallbackFailed(key, err)
		}
		return zero, false
	}
	if !ok || isNil(v) {
		return zero, false
	}
	if ttl > 0 {
		// write-back result does not change what the caller gets
		_ = c.put(ctx, "remember", key, v, ttl)
	}
	return v, true
}
