package loc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Recorder receives per-load statistics. observability.LoadMetrics satisfies it.
type Recorder interface {
	RecordLoad(ctx context.Context, rows, dropped int, cacheHit bool)
}

// Cache persists parsed results between loads. cache.Store satisfies it.
type Cache interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
}

type options struct {
	logger         *slog.Logger
	tracer         trace.Tracer
	recorder       Recorder
	cache          Cache
	client         *http.Client
	baseURL        *url.URL
	detectLanguage bool
}

// Option configures Load and Parse.
type Option func(*options)

// WithLogger sets the logger for malformed-row and load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the tracer used for the load span.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithRecorder sets the load statistics sink.
func WithRecorder(rec Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithCache enables the parsed-result cache.
func WithCache(c Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithHTTPClient overrides the client used for http(s) sources.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithBaseURL resolves relative sources against base, the way a page resolves
// a relative data URL against its own location.
func WithBaseURL(base *url.URL) Option {
	return func(o *options) { o.baseURL = base }
}

// WithLanguageDetection fills empty type tags from the file extension.
func WithLanguageDetection(enabled bool) Option {
	return func(o *options) { o.detectLanguage = enabled }
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:         nooptrace.NewTracerProvider().Tracer("loc"),
		client:         http.DefaultClient,
		detectLanguage: true,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
