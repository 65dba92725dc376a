package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNew_AddsServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Service: "relay"})

	l.Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "relay", rec["service"])
	assert.Equal(t, "hello", rec["msg"])
}

func TestNew_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoContext(ctx, "traced")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", rec["span_id"])
}

func TestNew_NoTraceWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})

	l.InfoContext(context.Background(), "plain")

	assert.NotContains(t, buf.String(), "trace_id")
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Format: "text"})

	l.Warn("careful", slog.Int("n", 3))
	assert.Contains(t, buf.String(), "msg=careful")
	assert.Contains(t, buf.String(), "n=3")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "error"})

	l.Info("dropped")
	assert.Empty(t, buf.String())
}
