package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/commitviz/pkg/config"
)

// ResourceFor builds the OTel resource Init would export under.
func ResourceFor(cfg *config.Config, opts Options) (*resource.Resource, error) {
	s, err := newSettings(cfg, opts)
	if err != nil {
		return nil, err
	}

	return newResource(s)
}

// RootSampled reports whether a root span is recorded under the sampler
// Init would choose, with the ratio sampler's trace ID fixed to traceID.
func RootSampled(cfg *config.Config, opts Options, traceID [16]byte) bool {
	s, err := newSettings(cfg, opts)
	if err != nil {
		return false
	}

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(s.sampler()),
		sdktrace.WithIDGenerator(fixedIDs{traceID: trace.TraceID(traceID)}),
	)

	_, span := tp.Tracer("commitviz-test").Start(context.Background(), "command.stats")
	span.End()

	return len(exporter.GetSpans()) == 1
}

type fixedIDs struct {
	traceID trace.TraceID
}

func (f fixedIDs) NewIDs(context.Context) (trace.TraceID, trace.SpanID) {
	return f.traceID, trace.SpanID{1}
}

func (f fixedIDs) NewSpanID(context.Context, trace.TraceID) trace.SpanID {
	return trace.SpanID{2}
}
