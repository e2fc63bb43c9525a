package zap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/aimcache"
)

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("cache backend call failed", aimcache.Fields{"op": "get", "key": "k", "err": errors.New("boom")})
	l.Info("cache ready", nil)
	l.Warn("cache lost connection, reconnecting", aimcache.Fields{"addr": "127.0.0.1:6379"})
	l.Error("cache connection error", aimcache.Fields{})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "aimcache", entries[0].LoggerName)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "get", ctx["op"])
	assert.Equal(t, "k", ctx["key"])
	assert.Equal(t, "boom", ctx["err"])
	assert.Empty(t, entries[1].Context)
	assert.Equal(t, "127.0.0.1:6379", entries[2].ContextMap()["addr"])
}
