package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/commitviz/pkg/config"
)

const (
	instrumentationName = "github.com/Sumatoshi-tech/commitviz"

	attrAppMode    = "app.mode"
	attrDataSource = "commitviz.data.source"
)

// Providers holds what a commitviz command reports through.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes pending telemetry within the configured timeout.
	Shutdown func(ctx context.Context) error
}

// Init builds the logger and, when observability.otlp_endpoint is set, OTLP
// trace and metric pipelines for one run. Without an endpoint the tracer and
// meter are no-ops. Nothing is installed as an OTel global.
func Init(cfg *config.Config, opts Options) (Providers, error) {
	s, err := newSettings(cfg, opts)
	if err != nil {
		return Providers{}, err
	}

	logger := s.logger()

	if s.endpoint == "" {
		return Providers{
			Tracer:   nooptrace.NewTracerProvider().Tracer(instrumentationName),
			Meter:    noopmetric.NewMeterProvider().Meter(instrumentationName),
			Logger:   logger,
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	ctx := context.Background()

	res, err := newResource(s)
	if err != nil {
		return Providers{}, err
	}

	var dropLog *slog.Logger
	if opts.Verbose {
		dropLog = logger
	}

	tp, err := newTracerProvider(ctx, s, res, dropLog)
	if err != nil {
		return Providers{}, err
	}

	mp, err := newMeterProvider(ctx, s, res)
	if err != nil {
		return Providers{}, errors.Join(err, tp.Shutdown(ctx))
	}

	logger.Debug("exporting telemetry", "endpoint", s.endpoint, "sample_ratio", s.sampleRatio)

	return Providers{
		Tracer: tp.Tracer(instrumentationName),
		Meter:  mp.Meter(instrumentationName),
		Logger: logger,
		Shutdown: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, s.shutdown)
			defer cancel()

			return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		},
	}, nil
}

func newResource(s settings) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(s.service),
		attribute.String(attrAppMode, string(s.mode)),
	}

	if s.version != "" {
		attrs = append(attrs, semconv.ServiceVersion(s.version))
	}

	if s.environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(s.environment))
	}

	if s.dataSource != "" {
		attrs = append(attrs, attribute.String(attrDataSource, s.dataSource))
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func newTracerProvider(
	ctx context.Context, s settings, res *resource.Resource, dropLog *slog.Logger,
) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(s.endpoint)}

	if s.insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(s.headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(s.headers))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewAttributeFilter(sdktrace.NewBatchSpanProcessor(exporter), dropLog)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(s.sampler()),
	), nil
}

func newMeterProvider(ctx context.Context, s settings, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(s.endpoint)}

	if s.insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(s.headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(s.headers))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

// sampler records every run when verbose, a sample_ratio share of root runs
// when it lies strictly between 0 and 1, and every run otherwise.
func (s settings) sampler() sdktrace.Sampler {
	if s.sampleAll {
		return sdktrace.AlwaysSample()
	}

	if s.sampleRatio > 0 && s.sampleRatio < 1 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.sampleRatio))
	}

	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}
