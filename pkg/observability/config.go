// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the commitviz hosts (CLI and browser).
package observability

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/commitviz/pkg/config"
)

// AppMode identifies the host the core runs in.
type AppMode string

const (
	// ModeCLI is the command-line build host.
	ModeCLI AppMode = "cli"
	// ModeWeb is the WebAssembly browser host.
	ModeWeb AppMode = "web"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	logFormatJSON          = "json"
)

// Options are the per-run switches a host layers over the config file.
type Options struct {
	Mode    AppMode
	Version string

	// Verbose logs at debug level, records every trace and warns about span
	// attributes the filter drops.
	Verbose bool

	// Quiet logs errors only and takes precedence over Verbose for the level.
	Quiet bool

	// Output receives log records. Nil means stderr.
	Output io.Writer
}

// settings is the resolved view of the config file and the run options.
type settings struct {
	service     string
	version     string
	environment string
	mode        AppMode
	dataSource  string

	endpoint string
	headers  map[string]string
	insecure bool

	sampleRatio float64
	sampleAll   bool
	shutdown    time.Duration

	level  slog.Level
	json   bool
	output io.Writer
}

func newSettings(cfg *config.Config, opts Options) (settings, error) {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return settings{}, err
	}

	switch {
	case opts.Quiet:
		level = slog.LevelError
	case opts.Verbose:
		level = slog.LevelDebug
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeCLI
	}

	service := cfg.Observability.ServiceName
	if service == "" {
		service = config.DefaultServiceName
	}

	shutdown := cfg.Observability.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}

	return settings{
		service:     service,
		version:     opts.Version,
		environment: cfg.Observability.Environment,
		mode:        mode,
		dataSource:  cfg.Data.Source,
		endpoint:    cfg.Observability.OTLPEndpoint,
		headers:     ParseOTLPHeaders(cfg.Observability.OTLPHeaders),
		insecure:    cfg.Observability.OTLPInsecure,
		sampleRatio: cfg.Observability.SampleRatio,
		sampleAll:   opts.Verbose,
		shutdown:    shutdown,
		level:       level,
		json:        strings.EqualFold(cfg.Logging.Format, logFormatJSON),
		output:      opts.Output,
	}, nil
}

func (s settings) logger() *slog.Logger {
	return NewLogger(s.output, s.level, s.json, s.service, s.environment, s.mode)
}

// ParseOTLPHeaders parses "key=value,key=value". Pairs without "=" are
// skipped; nil means no headers.
func ParseOTLPHeaders(raw string) map[string]string {
	var out map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}

		if out == nil {
			out = make(map[string]string)
		}

		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return out
}
