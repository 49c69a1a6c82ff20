package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/commitviz/pkg/config"
	"github.com/Sumatoshi-tech/commitviz/pkg/observability"
)

func baseConfig() *config.Config {
	return &config.Config{
		Data:    config.DataConfig{Source: "loc.csv"},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
		Observability: config.ObservabilityConfig{
			ServiceName: "commitviz",
			Environment: "ci",
		},
	}
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))

		out = append(out, rec)
	}

	return out
}

func TestInit_WithoutEndpointTracesNothing(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(baseConfig(), observability.Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "command.build")
	assert.False(t, span.IsRecording())
	span.End()

	counter, err := providers.Meter.Int64Counter("commitviz.load.total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerCarriesHostMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode observability.AppMode
		want string
	}{
		{name: "default is cli", want: "cli"},
		{name: "cli", mode: observability.ModeCLI, want: "cli"},
		{name: "web", mode: observability.ModeWeb, want: "web"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			providers, err := observability.Init(baseConfig(), observability.Options{Mode: tt.mode, Output: &buf})
			require.NoError(t, err)

			providers.Logger.Info("loaded commit log", "rows", 3)

			recs := records(t, &buf)
			require.Len(t, recs, 1)
			assert.Equal(t, "commitviz", recs[0]["service"])
			assert.Equal(t, "ci", recs[0]["env"])
			assert.Equal(t, tt.want, recs[0]["mode"])
			assert.InDelta(t, 3, recs[0]["rows"], 0)
		})
	}
}

func TestInit_LevelFromConfigAndFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     string
		opts      observability.Options
		wantDebug bool
		wantWarn  bool
	}{
		{name: "config info", level: "info", wantWarn: true},
		{name: "config debug", level: "debug", wantDebug: true, wantWarn: true},
		{name: "config error", level: "error"},
		{name: "verbose", level: "error", opts: observability.Options{Verbose: true}, wantDebug: true, wantWarn: true},
		{name: "quiet", level: "debug", opts: observability.Options{Quiet: true}},
		{name: "quiet wins", level: "info", opts: observability.Options{Verbose: true, Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			cfg := baseConfig()
			cfg.Logging.Level = tt.level
			tt.opts.Output = &buf

			providers, err := observability.Init(cfg, tt.opts)
			require.NoError(t, err)

			providers.Logger.Debug("cutoff applied")
			providers.Logger.Warn("dropped malformed row")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "cutoff applied"))
			assert.Equal(t, tt.wantWarn, strings.Contains(out, "dropped malformed row"))
		})
	}
}

func TestInit_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := baseConfig()
	cfg.Logging.Format = "text"

	providers, err := observability.Init(cfg, observability.Options{Output: &buf})
	require.NoError(t, err)

	providers.Logger.Info("built site", "commits", 2)

	assert.Contains(t, buf.String(), "msg=\"built site\"")
	assert.Contains(t, buf.String(), "commits=2")
	assert.Contains(t, buf.String(), "mode=cli")
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Logging.Level = "loud"

	_, err := observability.Init(cfg, observability.Options{})
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestResource_DescribesRun(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Observability.ServiceName = ""

	res, err := observability.ResourceFor(cfg, observability.Options{Mode: observability.ModeCLI, Version: "v1.4.0"})
	require.NoError(t, err)

	want := map[string]string{
		"service.name":           "commitviz",
		"service.version":        "v1.4.0",
		"deployment.environment": "ci",
		"app.mode":               "cli",
		"commitviz.data.source":  "loc.csv",
	}

	for key, value := range want {
		got, ok := res.Set().Value(attribute.Key(key))
		require.True(t, ok, key)
		assert.Equal(t, value, got.AsString(), key)
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()

	low := [16]byte{}
	high := [16]byte{15: 0xff, 14: 0xff, 13: 0xff, 12: 0xff, 11: 0xff, 10: 0xff, 9: 0xff, 8: 0xff}

	tests := []struct {
		name    string
		ratio   float64
		verbose bool
		traceID [16]byte
		want    bool
	}{
		{name: "unset ratio records every run", traceID: high, want: true},
		{name: "full ratio records every run", ratio: 1, traceID: high, want: true},
		{name: "ratio keeps low trace ids", ratio: 0.1, traceID: low, want: true},
		{name: "ratio drops high trace ids", ratio: 0.1, traceID: high, want: false},
		{name: "verbose overrides ratio", ratio: 0.1, verbose: true, traceID: high, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig()
			cfg.Observability.SampleRatio = tt.ratio

			got := observability.RootSampled(cfg, observability.Options{Verbose: tt.verbose}, tt.traceID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("no-equals, =orphan"))
	assert.Equal(t,
		map[string]string{"authorization": "Bearer abc", "x-team": "portfolio"},
		observability.ParseOTLPHeaders(" authorization = Bearer abc ,x-team=portfolio,junk"),
	)
}
