package aimcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/aimcache/backend"
)

func (c *cache[V]) MultiGet(ctx context.Context, key string, fields []string) ([]HashField[V], error) {
	if !c.validKey("multiget", key) || len(fields) == 0 {
		return []HashField[V]{}, nil
	}
	var raws [][]byte
	err := c.do(ctx, "multiget", key, func(ctx context.Context, b backend.Backend) (err error) {
		raws, err = b.HMGet(ctx, key, fields)
		return err
	})
	if err != nil {
		return nil, &TransportError{Op: "multiget", Key: key, Err: err}
	}

	out := make([]HashField[V], len(fields))
	for i, f := range fields {
		out[i].Name = f
		if i >= len(raws) || raws[i] == nil {
			c.hooks.Miss("multiget", key)
			continue
		}
		v, err := c.codec.Decode(raws[i])
		if err != nil {
			c.codecErr("multiget", key, err)
			continue
		}
		out[i].Value = v
		out[i].Found = true
		c.hooks.Hit("multiget", key)
	}
	return out, nil
}

// MultiPut writes all fields in one call. The TTL applies to the whole key
// and is set afterwards, best-effort: if it fails, the fields stay written
// and the result is still true.
func (c *cache[V]) MultiPut(ctx context.Context, key string, fields map[string]V, ttl time.Duration) bool {
	if !c.validKey("multiput", key) || len(fields) == 0 {
		return false
	}
	payloads := make(map[string][]byte, len(fields))
	for f, v := range fields {
		b, err := c.codec.Encode(v)
		if err != nil {
			c.codecErr("multiput", key, err)
			return false
		}
		payloads[f] = b
	}
	err := c.do(ctx, "multiput", key, func(ctx context.Context, b backend.Backend) error {
		return b.HSet(ctx, key, payloads)
	})
	if err != nil {
		return false
	}
	if ttl > 0 {
		cn := c.conn.Load()
		if cn == nil {
			c.hooks.ExpireFailed(key, ErrNotConnected)
			return true
		}
		cctx, cancel := context.WithTimeout(ctx, c.opTimeout)
		defer cancel()
		if err := cn.b.Expire(cctx, key, ttl); err != nil {
			c.log.Debug("cache expire after multiput failed", Fields{"key": key, "err": err})
			c.hooks.ExpireFailed(key, err)
		}
	}
	return true
}
