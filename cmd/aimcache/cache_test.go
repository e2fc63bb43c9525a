package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/aimcache"
)

func TestParseFieldPairs(t *testing.T) {
	got, err := parseFieldPairs([]string{`a=1`, `b={"x":true}`, `c=plain text`, `d=`})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got["a"])
	assert.Equal(t, map[string]any{"x": true}, got["b"])
	assert.Equal(t, "plain text", got["c"])
	assert.Equal(t, "", got["d"])

	_, err = parseFieldPairs(nil)
	assert.Error(t, err)
	_, err = parseFieldPairs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseFieldPairs([]string{"=1"})
	assert.Error(t, err)
}

func TestWritesAgainstRedis(t *testing.T) {
	assert := assert.New(t)
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	base := []string{"aimcache", "--cache-host", host, "--cache-port", port}

	require.NoError(t, run(append(base, "put", "--ttl", "1m", "user:1", `{"name":"ada"}`)))
	v, err := mr.Get("user:1")
	require.NoError(t, err)
	assert.JSONEq(`{"name":"ada"}`, v)
	assert.Equal(time.Minute, mr.TTL("user:1"))

	require.NoError(t, run(append(base, "hset", "--ttl", "10s", "h", "a=1", "b=x")))
	assert.Equal("1", mr.HGet("h", "a"))
	assert.Equal(`"x"`, mr.HGet("h", "b"))
	assert.Equal(10*time.Second, mr.TTL("h"))

	require.NoError(t, run(append(base, "del", "user:1")))
	assert.False(mr.Exists("user:1"))
}

func TestConnectionEventsLoggedOnce(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := aimcache.New[string](cacheOptions[string](aimcache.Config{Host: host, Port: p}, time.Second, logger))
	require.NoError(t, err)
	require.NoError(t, c.Run(ctx))
	require.NoError(t, c.Close(ctx))

	var ready int
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(ln), &m), ln)
		if m["event"] == "ready" {
			ready++
		}
	}
	assert.Equal(t, 1, ready, buf.String())
}
