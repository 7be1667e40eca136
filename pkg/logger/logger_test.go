package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func Test_ContextHandler_AddsContextAttrs(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = WithAttrs(ctx, slog.Int64("generation", 3))
	ctx = WithAttrs(ctx, slog.Int("page", 2))

	// when
	log.InfoContext(ctx, "page loaded")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.EqualValues(t, 3, record["generation"])
	assert.EqualValues(t, 2, record["page"])
}

func Test_ContextHandler_PlainContext(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := newTestLogger(&buf).With("component", "test")

	// when
	log.InfoContext(context.Background(), "hello")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test", record["component"])
	assert.NotContains(t, record, "request_id")
}
