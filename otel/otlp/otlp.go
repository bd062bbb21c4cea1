// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp reads OTLP exporters for traces, metrics and logs.
//
// The transport is chosen by OTEL_EXPORTER_OTLP_PROTOCOL ("grpc", the
// default, or "http/protobuf"). Endpoints are read from the signal specific
// variable, e.g. OTEL_EXPORTER_OTLP_TRACES_ENDPOINT, falling back to
// OTEL_EXPORTER_OTLP_ENDPOINT. An unset endpoint yields an unset exporter.
package otlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/z5labs/schemaroute/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
)

// Supported values of OTEL_EXPORTER_OTLP_PROTOCOL.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// UnsupportedProtocolError is returned for an unknown transport protocol.
type UnsupportedProtocolError struct {
	Protocol string
}

func (e UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("otlp: unsupported protocol: %q", e.Protocol)
}

const userAgent = "schemaroute-otlp"

// Exporter configures the transport shared by every signal.
type Exporter struct {
	Protocol config.Reader[string]
	Endpoint config.Reader[string]
}

// ProtocolFromEnv reads OTEL_EXPORTER_OTLP_PROTOCOL.
func ProtocolFromEnv() config.Reader[string] {
	return config.Env("OTEL_EXPORTER_OTLP_PROTOCOL")
}

// EndpointFromEnv reads the endpoint for signal, one of "traces",
// "metrics" or "logs".
func EndpointFromEnv(signal string) config.Reader[string] {
	return config.Or(
		config.Env(fmt.Sprintf("OTEL_EXPORTER_OTLP_%s_ENDPOINT", strings.ToUpper(signal))),
		config.Env("OTEL_EXPORTER_OTLP_ENDPOINT"),
	)
}

// FromEnv configures the exporter of the given signal from the environment.
func FromEnv(signal string) Exporter {
	return Exporter{
		Protocol: ProtocolFromEnv(),
		Endpoint: EndpointFromEnv(signal),
	}
}

func build[T any](e Exporter, grpcFn, httpFn func(context.Context, string) (T, error)) config.Reader[T] {
	return config.Map(e.Endpoint, func(ctx context.Context, endpoint string) (T, error) {
		var zero T

		protocol, err := config.Read(ctx, config.Default(ProtocolGRPC, e.Protocol))
		if err != nil {
			return zero, err
		}

		switch protocol {
		case ProtocolGRPC:
			return grpcFn(ctx, endpoint)
		case ProtocolHTTP:
			return httpFn(ctx, endpoint)
		default:
			return zero, UnsupportedProtocolError{Protocol: protocol}
		}
	})
}

// SpanExporter reads a trace exporter.
func SpanExporter(e Exporter) config.Reader[sdktrace.SpanExporter] {
	return build(
		e,
		func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
			return otlptracegrpc.New(
				ctx,
				otlptracegrpc.WithEndpointURL(endpoint),
				otlptracegrpc.WithDialOption(grpc.WithUserAgent(userAgent)),
			)
		},
		func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
			return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		},
	)
}

// MetricExporter reads a metric exporter.
func MetricExporter(e Exporter) config.Reader[sdkmetric.Exporter] {
	return build(
		e,
		func(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
			return otlpmetricgrpc.New(
				ctx,
				otlpmetricgrpc.WithEndpointURL(endpoint),
				otlpmetricgrpc.WithDialOption(grpc.WithUserAgent(userAgent)),
			)
		},
		func(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
			return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
		},
	)
}

// LogExporter reads a log exporter.
func LogExporter(e Exporter) config.Reader[sdklog.Exporter] {
	return build(
		e,
		func(ctx context.Context, endpoint string) (sdklog.Exporter, error) {
			return otlploggrpc.New(
				ctx,
				otlploggrpc.WithEndpointURL(endpoint),
				otlploggrpc.WithDialOption(grpc.WithUserAgent(userAgent)),
			)
		},
		func(ctx context.Context, endpoint string) (sdklog.Exporter, error) {
			return otlploghttp.New(ctx, otlploghttp.WithEndpointURL(endpoint))
		},
	)
}
