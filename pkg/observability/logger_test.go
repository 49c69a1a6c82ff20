package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/commitviz/pkg/observability"
)

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))

	return rec
}

func TestLogger_TagsRecordsWithActiveCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := observability.NewLogger(&buf, slog.LevelInfo, true, "commitviz", "", observability.ModeCLI)
	tracer := sdktrace.NewTracerProvider().Tracer("commands")

	ctx, span := tracer.Start(context.Background(), "command.build")
	logger.InfoContext(ctx, "wrote site", "dir", "dist")
	span.End()

	rec := lastRecord(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), rec["span_id"])
	assert.Equal(t, "dist", rec["dir"])
	assert.NotContains(t, rec, "env")

	logger.InfoContext(context.Background(), "outside any command")

	rec = lastRecord(t, &buf)
	assert.NotContains(t, rec, "trace_id")
	assert.Equal(t, "cli", rec["mode"])
}

func TestLogger_WebHostKeepsMetadataOutsideGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := observability.NewLogger(&buf, slog.LevelDebug, true, "commitviz", "pages", observability.ModeWeb).
		WithGroup("slider")
	logger.Debug("progress changed", "value", 40)

	rec := lastRecord(t, &buf)
	assert.Equal(t, "commitviz", rec["service"])
	assert.Equal(t, "pages", rec["env"])
	assert.Equal(t, "web", rec["mode"])
	assert.Equal(t, map[string]any{"value": float64(40)}, rec["slider"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := observability.NewLogger(&buf, slog.LevelWarn, false, "commitviz", "", observability.ModeCLI)

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger.Info("fetched log")
	assert.Empty(t, buf.String())

	logger.With("path", "loc.csv").Warn("skipped row")
	assert.Contains(t, buf.String(), "path=loc.csv")
	assert.Contains(t, buf.String(), "service=commitviz")
}

func TestLogger_NilWriterFallsBackToStderr(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger(nil, slog.LevelError, false, "commitviz", "", observability.ModeCLI)
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
