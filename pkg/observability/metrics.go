package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricLoadsTotal      = "commitviz.load.total"
	metricLoadRows        = "commitviz.load.rows"
	metricLoadDroppedRows = "commitviz.load.dropped_rows"

	metricCommandsTotal   = "commitviz.command.total"
	metricCommandDuration = "commitviz.command.duration.seconds"
	metricCommandErrors   = "commitviz.command.errors.total"

	attrCache   = "cache"
	attrCommand = "command"
	attrStatus  = "status"

	cacheHit  = "hit"
	cacheMiss = "miss"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s: a cached stats run up to a
// full site build over a large log.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// LoadMetrics counts commit log loads. It satisfies loc.Recorder.
type LoadMetrics struct {
	loads   metric.Int64Counter
	rows    metric.Int64Counter
	dropped metric.Int64Counter
}

// NewLoadMetrics creates the load instruments from mt.
func NewLoadMetrics(mt metric.Meter) (*LoadMetrics, error) {
	loads, err := mt.Int64Counter(metricLoadsTotal,
		metric.WithDescription("Commit log loads"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLoadsTotal, err)
	}

	rows, err := mt.Int64Counter(metricLoadRows,
		metric.WithDescription("Line records accepted"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLoadRows, err)
	}

	dropped, err := mt.Int64Counter(metricLoadDroppedRows,
		metric.WithDescription("Malformed rows dropped"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLoadDroppedRows, err)
	}

	return &LoadMetrics{loads: loads, rows: rows, dropped: dropped}, nil
}

// RecordLoad records one completed load.
func (lm *LoadMetrics) RecordLoad(ctx context.Context, rows, dropped int, hit bool) {
	state := cacheMiss
	if hit {
		state = cacheHit
	}

	lm.loads.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCache, state)))
	lm.rows.Add(ctx, int64(rows))
	lm.dropped.Add(ctx, int64(dropped))
}

// CommandMetrics holds the rate, error and duration instruments for CLI
// commands.
type CommandMetrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewCommandMetrics creates the command instruments from mt.
func NewCommandMetrics(mt metric.Meter) (*CommandMetrics, error) {
	total, err := mt.Int64Counter(metricCommandsTotal,
		metric.WithDescription("Commands run"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricCommandDuration,
		metric.WithDescription("Command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandDuration, err)
	}

	errs, err := mt.Int64Counter(metricCommandErrors,
		metric.WithDescription("Commands that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandErrors, err)
	}

	return &CommandMetrics{total: total, duration: duration, errors: errs}, nil
}

// RecordCommand records a finished command. A non-nil runErr marks it failed.
func (cm *CommandMetrics) RecordCommand(ctx context.Context, name string, elapsed time.Duration, runErr error) {
	status := statusOK
	if runErr != nil {
		status = statusError

		cm.errors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCommand, name)))
	}

	attrs := metric.WithAttributes(
		attribute.String(attrCommand, name),
		attribute.String(attrStatus, status),
	)

	cm.total.Add(ctx, 1, attrs)
	cm.duration.Record(ctx, elapsed.Seconds(), attrs)
}
