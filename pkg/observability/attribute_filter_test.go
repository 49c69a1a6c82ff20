package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/commitviz/pkg/observability"
)

func filteredSpan(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	out := make(map[string]any, len(spans[0].Attributes))
	for _, kv := range spans[0].Attributes {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}

	return out
}

func TestAttributeFilter_AllowsKnownKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpan(t, nil,
		attribute.String("loc.source", "loc.csv"),
		attribute.Int("site.commits", 12),
		attribute.String("error.type", "timeout"),
		attribute.String("commitviz.new_attr", "val"),
	)

	assert.Equal(t, "loc.csv", attrs["loc.source"])
	assert.Equal(t, int64(12), attrs["site.commits"])
	assert.Equal(t, "timeout", attrs["error.type"])
	assert.Equal(t, "val", attrs["commitviz.new_attr"])
}

func TestAttributeFilter_BlocksAuthorsAndUnknownKeys(t *testing.T) {
	t.Parallel()

	attrs := filteredSpan(t, nil,
		attribute.String("author", "Ada"),
		attribute.String("loc.author", "Ada"),
		attribute.String("author.email", "ada@example.com"),
		attribute.String("email", "ada@example.com"),
		attribute.String("user.id", "12345"),
		attribute.String("http.method", "GET"),
		attribute.Int("loc.rows", 3),
	)

	assert.Equal(t, map[string]any{"loc.rows": int64(3)}, attrs)
}

func TestAttributeFilter_WarnsWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	filteredSpan(t, logger, attribute.String("user.secret", "val"))

	assert.Contains(t, buf.String(), "user.secret")
	assert.Contains(t, buf.String(), "blocked")
}
