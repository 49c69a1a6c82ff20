package observability_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/commitviz/pkg/config"
	"github.com/Sumatoshi-tech/commitviz/pkg/observability"
)

func newReader(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()

	reader := sdkmetric.NewManualReader()

	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestLoadMetrics_RecordLoad(t *testing.T) {
	t.Parallel()

	reader, mp := newReader(t)

	lm, err := observability.NewLoadMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	lm.RecordLoad(ctx, 120, 3, false)
	lm.RecordLoad(ctx, 120, 3, true)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "commitviz.load.total")))
	assert.Equal(t, int64(240), sumOf(t, findMetric(rm, "commitviz.load.rows")))
	assert.Equal(t, int64(6), sumOf(t, findMetric(rm, "commitviz.load.dropped_rows")))

	loads, ok := findMetric(rm, "commitviz.load.total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, loads.DataPoints, 2)

	states := map[string]int64{}
	for _, dp := range loads.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("cache"))
		states[v.AsString()] = dp.Value
	}

	assert.Equal(t, map[string]int64{"hit": 1, "miss": 1}, states)
}

func TestCommandMetrics_RecordCommand(t *testing.T) {
	t.Parallel()

	reader, mp := newReader(t)

	cm, err := observability.NewCommandMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	cm.RecordCommand(ctx, "build", 250*time.Millisecond, nil)
	cm.RecordCommand(ctx, "stats", time.Millisecond, errors.New("boom"))

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "commitviz.command.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "commitviz.command.errors.total")))
	require.NotNil(t, findMetric(rm, "commitviz.command.duration.seconds"))
}

func TestMetrics_WithNoopMeter(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(&config.Config{}, observability.Options{Output: io.Discard})
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	lm, err := observability.NewLoadMetrics(providers.Meter)
	require.NoError(t, err)
	lm.RecordLoad(context.Background(), 1, 0, false)

	cm, err := observability.NewCommandMetrics(providers.Meter)
	require.NoError(t, err)
	cm.RecordCommand(context.Background(), "version", time.Millisecond, nil)
}
