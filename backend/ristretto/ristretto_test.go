package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/aimcache/backend"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, Metrics: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestProviderGetSetDel(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	p := newTestProvider(t)

	_, ok, err := p.Get(ctx, "k")
	assert.NoError(err)
	assert.False(ok)

	buf := []byte("v")
	assert.NoError(p.Set(ctx, "k", buf, 0))
	buf[0] = 'x' // stored copy is independent of the caller's slice
	v, ok, err := p.Get(ctx, "k")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal([]byte("v"), v)

	exists, _ := p.Exists(ctx, "k")
	assert.True(exists)
	assert.NoError(p.Del(ctx, "k"))
	exists, _ = p.Exists(ctx, "k")
	assert.False(exists)
}

func TestProviderTTL(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	require.NoError(t, p.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	require.NoError(t, p.Set(ctx, "long", []byte("v"), time.Hour))

	assert.Eventually(t, func() bool {
		_, ok, _ := p.Get(ctx, "short")
		return !ok
	}, 3*time.Second, 20*time.Millisecond)
	_, ok, _ := p.Get(ctx, "long")
	assert.True(t, ok)
}

func TestProviderHashes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	p := newTestProvider(t)

	assert.Error(p.HSet(ctx, "h", nil))
	assert.NoError(p.HSet(ctx, "h", map[string][]byte{"f1": []byte("a")}))
	assert.NoError(p.HSet(ctx, "h", map[string][]byte{"f2": []byte("b")}))

	got, err := p.HMGet(ctx, "h", []string{"f2", "nope", "f1"})
	assert.NoError(err)
	assert.Equal([][]byte{[]byte("b"), nil, []byte("a")}, got)

	got, err = p.HMGet(ctx, "absent", []string{"f"})
	assert.NoError(err)
	assert.Equal([][]byte{nil}, got)
}

func TestProviderWrongType(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	require.NoError(t, p.Set(ctx, "s", []byte("v"), 0))
	assert.ErrorIs(t, p.HSet(ctx, "s", map[string][]byte{"f": nil}), ErrWrongType)
	_, err := p.HMGet(ctx, "s", []string{"f"})
	assert.ErrorIs(t, err, ErrWrongType)

	require.NoError(t, p.HSet(ctx, "h", map[string][]byte{"f": []byte("a")}))
	_, _, err = p.Get(ctx, "h")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestProviderExpire(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	assert.Error(t, p.Expire(ctx, "absent", time.Minute))

	require.NoError(t, p.HSet(ctx, "h", map[string][]byte{"f": []byte("a")}))
	require.NoError(t, p.Expire(ctx, "h", 50*time.Millisecond))
	assert.Eventually(t, func() bool {
		ok, _ := p.Exists(ctx, "h")
		return !ok
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, p.Set(ctx, "gone", []byte("v"), 0))
	require.NoError(t, p.Expire(ctx, "gone", 0))
	ok, _ := p.Exists(ctx, "gone")
	assert.False(t, ok)
}

func TestProviderHonorsContextAndClose(t *testing.T) {
	p := newTestProvider(t)

	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := p.Get(cctx, "k")
	assert.ErrorIs(t, err, context.Canceled)

	ctx := context.Background()
	require.NoError(t, p.Close(ctx))
	require.NoError(t, p.Close(ctx))
	assert.ErrorIs(t, p.Set(ctx, "k", []byte("v"), 0), backend.ErrClosed)
	_, _, err = p.Get(ctx, "k")
	assert.ErrorIs(t, err, backend.ErrClosed)
}
