package requestid

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Length(t *testing.T) {
	id := New()
	assert.Len(t, id, 12)
}

func TestNew_Unique(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		ids[New()] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestWithID_Roundtrip(t *testing.T) {
	ctx := WithID(context.Background(), "abc123def456")
	id, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc123def456", id)
}

func TestFromContext_Missing(t *testing.T) {
	id, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestFromContext_EmptyString(t *testing.T) {
	ctx := WithID(context.Background(), "")
	id, ok := FromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(inner))

	ctx := WithID(context.Background(), "req123456789")
	logger.InfoContext(ctx, "test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "request_id=req123456789")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "test message")
}

func TestHandler_NoRequestID_WhenMissing(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(inner))

	logger.InfoContext(context.Background(), "no request id")

	assert.NotContains(t, buf.String(), "request_id")
}

func TestHandler_WithAttrs_PreservesRequestID(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(inner)).With("component", "test")

	ctx := WithID(context.Background(), "req987654321")
	logger.InfoContext(ctx, "with attrs")

	output := buf.String()
	assert.Contains(t, output, "request_id=req987654321")
	assert.Contains(t, output, "component=test")
}
