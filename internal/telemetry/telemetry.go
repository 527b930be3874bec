// Package telemetry owns the OpenTelemetry wiring for the pipeline: the
// slog bridge used for structured logging and the counters the resolver
// reports. The SDK lifecycle (exporters, providers, shutdown) belongs to the
// process entry point; everything else talks to the globals.
package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "surfgen"

var meter = otel.Meter(instrumentationName)

// NewLogger returns a slog.Logger bridged to the global OTel logger
// provider. Safe to call before Setup; records emitted earlier go to the
// no-op provider.
func NewLogger() *slog.Logger {
	return otelslog.NewLogger(instrumentationName)
}

// Setup installs stdout log and metric exporters and returns a shutdown
// function that flushes both providers.
func Setup(ctx context.Context) (func(context.Context) error, error) {
	logExporter, err := stdoutlog.New()
	if err != nil {
		return nil, err
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	global.SetLoggerProvider(loggerProvider)

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetMeterProvider(meterProvider)

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			loggerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}
	return shutdown, nil
}

// Counters are the pipeline-level metrics recorded by the resolver.
type Counters struct {
	TasksStarted     metric.Int64Counter
	TasksCached      metric.Int64Counter
	TasksFailed      metric.Int64Counter
	DocumentsWritten metric.Int64Counter
}

// NewCounters registers the resolver's counters on the global meter.
func NewCounters() (*Counters, error) {
	started, err := meter.Int64Counter("pipeline_tasks_started",
		metric.WithDescription("Tasks whose Execute was invoked"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, err
	}
	cached, err := meter.Int64Counter("pipeline_tasks_cached",
		metric.WithDescription("Tasks satisfied from an existing output record"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("pipeline_tasks_failed",
		metric.WithDescription("Tasks that failed or inherited a dependency failure"),
		metric.WithUnit("{task}"))
	if err != nil {
		return nil, err
	}
	docs, err := meter.Int64Counter("pipeline_documents_written",
		metric.WithDescription("Documents committed to the output store"),
		metric.WithUnit("{document}"))
	if err != nil {
		return nil, err
	}
	return &Counters{
		TasksStarted:     started,
		TasksCached:      cached,
		TasksFailed:      failed,
		DocumentsWritten: docs,
	}, nil
}
