// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"time"

	"github.com/z5labs/schemaroute/app"
	"github.com/z5labs/schemaroute/config"

	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SDK holds the readers for every provider. Unset readers fall back to
// noop providers and a W3C trace context plus baggage propagator.
type SDK struct {
	TextMapPropagator config.Reader[propagation.TextMapPropagator]
	TracerProvider    config.Reader[trace.TracerProvider]
	MeterProvider     config.Reader[metric.MeterProvider]
	LoggerProvider    config.Reader[log.LoggerProvider]
}

// Runtime runs an inner runtime with the providers installed globally and
// shuts them down once it returns.
type Runtime struct {
	inner          app.Runtime
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	loggerProvider log.LoggerProvider
}

// Build installs the providers read from sdk, starts the Go runtime
// metrics and then builds the inner runtime. The providers are installed
// first so the inner builder can already log and trace.
func Build[T app.Runtime](sdk SDK, builder app.Builder[T]) app.Builder[Runtime] {
	return app.BuilderFunc[Runtime](func(ctx context.Context) (_ Runtime, err error) {
		defer try.Recover(&err)

		tmp := config.MustOr[propagation.TextMapPropagator](
			ctx,
			propagation.NewCompositeTextMapPropagator(propagation.Baggage{}, propagation.TraceContext{}),
			sdk.TextMapPropagator,
		)
		tp := config.MustOr[trace.TracerProvider](ctx, tracenoop.NewTracerProvider(), sdk.TracerProvider)
		mp := config.MustOr[metric.MeterProvider](ctx, metricnoop.NewMeterProvider(), sdk.MeterProvider)
		lp := config.MustOr[log.LoggerProvider](ctx, lognoop.NewLoggerProvider(), sdk.LoggerProvider)

		otel.SetTextMapPropagator(tmp)
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		global.SetLoggerProvider(lp)

		rt := Runtime{
			tracerProvider: tp,
			meterProvider:  mp,
			loggerProvider: lp,
		}

		err = runtime.Start(runtime.WithMeterProvider(mp), runtime.WithMinimumReadMemStatsInterval(15*time.Second))
		if err != nil {
			return Runtime{}, errors.Join(err, rt.shutdown())
		}

		inner, err := builder.Build(ctx)
		if err != nil {
			return Runtime{}, errors.Join(err, rt.shutdown())
		}
		rt.inner = inner

		return rt, nil
	})
}

// Run runs the inner runtime and then flushes and shuts down every
// provider. Shutdown errors are joined with the runtime error.
func (rt Runtime) Run(ctx context.Context) (err error) {
	defer try.Close(&err, closerFunc(rt.shutdown))

	return rt.inner.Run(ctx)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

type shutdowner interface {
	Shutdown(context.Context) error
}

func (rt Runtime) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	for _, p := range []any{rt.tracerProvider, rt.meterProvider, rt.loggerProvider} {
		s, ok := p.(shutdowner)
		if !ok {
			continue
		}
		errs = append(errs, s.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
