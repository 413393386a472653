package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithWriter(Config{Service: "taskboard", Level: "DEBUG"}, &buf)
	require.NoError(t, err)

	log.Debug("hello", zap.Int("n", 1))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "taskboard", entry["service"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithWriter(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("dropped")
	assert.Zero(t, buf.Len())
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base, err := newWithWriter(Config{}, &buf)
	require.NoError(t, err)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))

	WithRequestID(ctx, base).Info("tagged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])

	assert.NotNil(t, WithRequestID(ctx, nil))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
