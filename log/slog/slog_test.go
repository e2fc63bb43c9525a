package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/aimcache"
)

func TestSlogLoggerWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})))

	l.Debug("filtered out", aimcache.Fields{"key": "k"})
	assert.Zero(t, buf.Len())

	l.Warn("cache lost connection, reconnecting", aimcache.Fields{"addr": "10.0.0.1:6379", "event": "reconnecting"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "cache lost connection, reconnecting", line["msg"])
	assert.Equal(t, "10.0.0.1:6379", line["addr"])
	assert.Equal(t, "reconnecting", line["event"])
}
