// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel reads OpenTelemetry providers and installs them globally
// around an [app.Runtime].
//
// Environment variables:
//   - OTEL_SERVICE_NAME, OTEL_SERVICE_VERSION: resource attributes
//   - OTEL_TRACES_SAMPLER_ARG: trace sampling ratio, defaults to 1
//   - OTEL_METRIC_EXPORT_INTERVAL: metric export interval, defaults to 60s
//   - OTEL_EXPORTER_OTLP_*: see package otlp
//
// A provider whose exporter is not configured is left unset, which makes
// [Build] fall back to a noop implementation.
package otel

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/z5labs/schemaroute/config"
	"github.com/z5labs/schemaroute/otel/otlp"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceNameFromEnv reads OTEL_SERVICE_NAME.
func ServiceNameFromEnv() config.Reader[string] {
	return config.Env("OTEL_SERVICE_NAME")
}

// ServiceVersionFromEnv reads OTEL_SERVICE_VERSION.
func ServiceVersionFromEnv() config.Reader[string] {
	return config.Env("OTEL_SERVICE_VERSION")
}

// SampleRatioFromEnv reads OTEL_TRACES_SAMPLER_ARG.
func SampleRatioFromEnv() config.Reader[float64] {
	return config.Float64FromString(config.Env("OTEL_TRACES_SAMPLER_ARG"))
}

// MetricIntervalFromEnv reads OTEL_METRIC_EXPORT_INTERVAL.
func MetricIntervalFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_METRIC_EXPORT_INTERVAL"))
}

// Resource reads the resource describing the service.
func Resource(name, version config.Reader[string]) config.Reader[*resource.Resource] {
	return config.ReaderFunc[*resource.Resource](func(ctx context.Context) (config.Value[*resource.Resource], error) {
		serviceName, err := config.Read(ctx, config.Default("", name))
		if err != nil {
			return config.Value[*resource.Resource]{}, err
		}
		if serviceName == "" {
			serviceName = unknownService()
		}
		serviceVersion, err := config.Read(ctx, config.Default("", version))
		if err != nil {
			return config.Value[*resource.Resource]{}, err
		}

		rsc, err := resource.New(
			ctx,
			resource.WithTelemetrySDK(),
			resource.WithHost(),
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(serviceVersion),
			),
		)
		if err != nil {
			return config.Value[*resource.Resource]{}, err
		}
		return config.ValueOf(rsc), nil
	})
}

// TracerProvider reads a batching tracer provider sampling parent based
// on the given ratio.
func TracerProvider(
	rsc config.Reader[*resource.Resource],
	exporter config.Reader[sdktrace.SpanExporter],
	ratio config.Reader[float64],
) config.Reader[trace.TracerProvider] {
	return config.Map(exporter, func(ctx context.Context, exp sdktrace.SpanExporter) (trace.TracerProvider, error) {
		r, err := config.Read(ctx, rsc)
		if err != nil {
			return nil, err
		}
		sampleRatio, err := config.Read(ctx, config.Default(1.0, ratio))
		if err != nil {
			return nil, err
		}

		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(r),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
			sdktrace.WithBatcher(exp),
		), nil
	})
}

// MeterProvider reads a meter provider exporting on a fixed interval.
func MeterProvider(
	rsc config.Reader[*resource.Resource],
	exporter config.Reader[sdkmetric.Exporter],
	interval config.Reader[time.Duration],
) config.Reader[metric.MeterProvider] {
	return config.Map(exporter, func(ctx context.Context, exp sdkmetric.Exporter) (metric.MeterProvider, error) {
		r, err := config.Read(ctx, rsc)
		if err != nil {
			return nil, err
		}
		every, err := config.Read(ctx, config.Default(time.Minute, interval))
		if err != nil {
			return nil, err
		}

		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(r),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(every))),
		), nil
	})
}

// LoggerProvider reads a batching logger provider.
func LoggerProvider(
	rsc config.Reader[*resource.Resource],
	exporter config.Reader[sdklog.Exporter],
) config.Reader[log.LoggerProvider] {
	return config.Map(exporter, func(ctx context.Context, exp sdklog.Exporter) (log.LoggerProvider, error) {
		r, err := config.Read(ctx, rsc)
		if err != nil {
			return nil, err
		}

		return sdklog.NewLoggerProvider(
			sdklog.WithResource(r),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		), nil
	})
}

// FromEnv configures every provider from the environment. The given name
// and version are used when OTEL_SERVICE_NAME or OTEL_SERVICE_VERSION are
// not set.
func FromEnv(name, version string) SDK {
	rsc := Resource(
		config.Default(name, ServiceNameFromEnv()),
		config.Default(version, ServiceVersionFromEnv()),
	)

	return SDK{
		TracerProvider: TracerProvider(rsc, otlp.SpanExporter(otlp.FromEnv("traces")), SampleRatioFromEnv()),
		MeterProvider:  MeterProvider(rsc, otlp.MetricExporter(otlp.FromEnv("metrics")), MetricIntervalFromEnv()),
		LoggerProvider: LoggerProvider(rsc, otlp.LogExporter(otlp.FromEnv("logs"))),
	}
}

func unknownService() string {
	exe, err := os.Executable()
	if err != nil {
		return "unknown_service:go"
	}
	return "unknown_service:" + filepath.Base(exe)
}
