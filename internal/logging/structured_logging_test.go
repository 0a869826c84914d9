package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructuredLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	logger.Info("hello", "answer", 42)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, float64(42), record["answer"])
}

func TestLogErrorIncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogError(logger, "something broke", errors.New("boom"), slog.String("route_id", "route-1"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "something broke", record["msg"])
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "route-1", record["route_id"])
}

func TestLogErrorNilLoggerIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "ignored", errors.New("boom"))
	})
}

func TestContextLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	// A bare context falls back to the default logger instead of nil.
	assert.NotNil(t, FromContext(context.Background()))
}

type flakyCloser struct {
	err    error
	closed bool
}

func (c *flakyCloser) Close() error {
	c.closed = true
	return c.err
}

func TestSafeCloseWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	clean := &flakyCloser{}
	SafeCloseWithLogging(clean, logger, "clean close")
	assert.True(t, clean.closed)
	assert.Zero(t, buf.Len())

	failing := &flakyCloser{err: errors.New("already closed")}
	SafeCloseWithLogging(failing, logger, "failing close")
	assert.True(t, failing.closed)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "already closed", record["error"])
	assert.Equal(t, "failing close", record["operation"])

	assert.NotPanics(t, func() {
		SafeCloseWithLogging(nil, logger, "nil closer")
	})
}
