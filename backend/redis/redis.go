package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/aimcache/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ backend.Backend = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this backend exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Client exposes the underlying client, e.g. for health checks.
func (p *Redis) Client() goredis.UniversalClient { return p.rdb }

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per backend contract
	}
	return p.rdb.Set(ctx, key, value, ttl).Err()
}

func (p *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *Redis) HSet(ctx context.Context, key string, fields map[string][]byte) error {
	if len(fields) == 0 {
		return errors.New("redis backend: hset with no fields")
	}
	values := make(map[string]any, len(fields))
	for f, v := range fields {
		values[f] = v
	}
	return p.rdb.HSet(ctx, key, values).Err()
}

func (p *Redis) HMGet(ctx context.Context, key string, fields []string) ([][]byte, error) {
	if len(fields) == 0 {
		return [][]byte{}, nil
	}
	vals, err := p.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(fields))
	for i, v := range vals {
		if i >= len(out) {
			break
		}
		switch vv := v.(type) {
		case nil:
			// missing field
		case string:
			out[i] = []byte(vv)
		case []byte:
			out[i] = vv
		default:
			out[i] = []byte(fmt.Sprint(vv))
		}
	}
	return out, nil
}

func (p *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := p.rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("redis backend: expire %q: key does not exist", key)
	}
	return nil
}

// Close releases the underlying redis client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
