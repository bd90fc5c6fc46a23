package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"access-error-service/config"
	"access-error-service/pkg/correlation"
)

func logOnce(t *testing.T, cfg *config.Config, ctx context.Context) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil), cfg))
	logger.InfoContext(ctx, "access error reported")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func spanContext(t *testing.T) context.Context {
	t.Helper()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestTraceHandler_AddsCorrelationID(t *testing.T) {
	ctx := correlation.WithID(context.Background(), "corr-1")

	entry := logOnce(t, &config.Config{}, ctx)

	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.NotContains(t, entry, "trace")
}

func TestTraceHandler_AddsTraceFields(t *testing.T) {
	cfg := &config.Config{OtelEnabled: true, GoogleCloudProject: "my-project"}

	entry := logOnce(t, cfg, spanContext(t))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace"])
	assert.Equal(t, "00f067aa0ba902b7", entry["spanId"])
	assert.Equal(t, true, entry["traceSampled"])
	assert.Equal(t, "projects/my-project/traces/4bf92f3577b34da6a3ce929d0e0e4736", entry["logging.googleapis.com/trace"])
}

func TestTraceHandler_OtelDisabled(t *testing.T) {
	entry := logOnce(t, &config.Config{OtelEnabled: false}, spanContext(t))

	assert.NotContains(t, entry, "trace")
	assert.NotContains(t, entry, "correlation_id")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}
