// Package ristretto is an in-process backend on top of dgraph-io/ristretto.
// It honors per-entry TTL and supports hashes, which makes it a drop-in for
// single-process deployments and tests. Entries are not shared across
// processes.
package ristretto

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/aimcache/backend"
)

var (
	// ErrRejected is returned when ristretto dropped a write (buffer contention
	// or admission under pressure).
	ErrRejected = errors.New("ristretto: write rejected")
	// ErrWrongType mirrors redis WRONGTYPE: string command on a hash or vice versa.
	ErrWrongType = errors.New("ristretto: wrong kind of value")
)

type Provider struct {
	c *rc.Cache

	mu     sync.Mutex // serializes read-modify-write (HSet, Expire)
	closed bool
}

var _ backend.Backend = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // bytes
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

// hash values are never mutated in place; HSet stores a fresh copy.
type hash map[string][]byte

func cost(v any) int64 {
	switch vv := v.(type) {
	case []byte:
		return int64(len(vv)) + 1
	case hash:
		var n int64 = 1
		for k, b := range vv {
			n += int64(len(k) + len(b))
		}
		return n
	default:
		return 1
	}
}

func (p *Provider) set(key string, v any, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !p.c.SetWithTTL(key, v, cost(v), ttl) {
		return ErrRejected
	}
	p.c.Wait() // make the write visible to the next Get
	if _, ok := p.c.Get(key); !ok {
		return ErrRejected // dropped by admission
	}
	return nil
}

func (p *Provider) checkOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return backend.ErrClosed
	}
	return nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := p.checkOpen(); err != nil {
		return nil, false, err
	}
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, isBytes := v.([]byte)
	if !isBytes {
		return nil, false, ErrWrongType
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return backend.ErrClosed
	}
	cp := append([]byte(nil), value...)
	return p.set(key, cp, ttl)
}

func (p *Provider) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	_, ok := p.c.Get(key)
	return ok, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return backend.ErrClosed
	}
	p.c.Del(key)
	p.c.Wait()
	return nil
}

func (p *Provider) HSet(ctx context.Context, key string, fields map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return errors.New("ristretto: hset with no fields")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return backend.ErrClosed
	}

	next := make(hash, len(fields))
	var ttl time.Duration
	if v, ok := p.c.Get(key); ok {
		cur, isHash := v.(hash)
		if !isHash {
			return ErrWrongType
		}
		for f, b := range cur {
			next[f] = b
		}
		// HSET keeps the key's remaining TTL
		if rem, ok := p.c.GetTTL(key); ok && rem > 0 {
			ttl = rem
		}
	}
	for f, b := range fields {
		next[f] = append([]byte(nil), b...)
	}
	return p.set(key, next, ttl)
}

func (p *Provider) HMGet(ctx context.Context, key string, fields []string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	out := make([][]byte, len(fields))
	v, ok := p.c.Get(key)
	if !ok {
		return out, nil
	}
	h, isHash := v.(hash)
	if !isHash {
		return nil, ErrWrongType
	}
	for i, f := range fields {
		out[i] = h[f]
	}
	return out, nil
}

func (p *Provider) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return backend.ErrClosed
	}
	v, ok := p.c.Get(key)
	if !ok {
		return fmt.Errorf("ristretto: expire %q: key does not exist", key)
	}
	if ttl <= 0 {
		p.c.Del(key)
		p.c.Wait()
		return nil
	}
	return p.set(key, v, ttl)
}

func (p *Provider) Close(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of backend.Backend).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
