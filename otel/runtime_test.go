// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/schemaroute/app"
	"github.com/z5labs/schemaroute/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	lognoop "go.opentelemetry.io/otel/log/noop"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type shutdownTracerProvider struct {
	tracenoop.TracerProvider

	called bool
	err    error
}

func (p *shutdownTracerProvider) Shutdown(context.Context) error {
	p.called = true
	return p.err
}

func TestBuild(t *testing.T) {
	t.Run("will install the providers globally", func(t *testing.T) {
		tp := &shutdownTracerProvider{}

		rt, err := Build(
			SDK{TracerProvider: config.ReaderOf[trace.TracerProvider](tp)},
			app.Build(func(context.Context) (app.RuntimeFunc, error) {
				return func(context.Context) error { return nil }, nil
			}),
		).Build(context.Background())
		require.NoError(t, err)

		assert.Same(t, tp, rt.tracerProvider)
		assert.NotNil(t, otel.GetTextMapPropagator())
		assert.IsType(t, metricnoop.MeterProvider{}, rt.meterProvider)
		assert.IsType(t, lognoop.LoggerProvider{}, rt.loggerProvider)
	})

	t.Run("will shut down the providers", func(t *testing.T) {
		t.Run("if the inner runtime can not be built", func(t *testing.T) {
			tp := &shutdownTracerProvider{}
			buildErr := errors.New("no database")

			_, err := Build(
				SDK{TracerProvider: config.ReaderOf[trace.TracerProvider](tp)},
				app.Build(func(context.Context) (app.RuntimeFunc, error) {
					return nil, buildErr
				}),
			).Build(context.Background())

			assert.ErrorIs(t, err, buildErr)
			assert.True(t, tp.called)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if a provider can not be read", func(t *testing.T) {
			readErr := errors.New("bad exporter")

			_, err := Build(
				SDK{TracerProvider: config.ReaderFunc[trace.TracerProvider](func(context.Context) (config.Value[trace.TracerProvider], error) {
					return config.Value[trace.TracerProvider]{}, readErr
				})},
				app.Build(func(context.Context) (app.RuntimeFunc, error) {
					return func(context.Context) error { return nil }, nil
				}),
			).Build(context.Background())

			assert.Error(t, err)
		})
	})
}

func TestRuntime_Run(t *testing.T) {
	t.Run("will join the runtime and shutdown errors", func(t *testing.T) {
		runErr := errors.New("crashed")
		shutdownErr := errors.New("flush failed")
		tp := &shutdownTracerProvider{err: shutdownErr}

		rt := Runtime{
			inner:          app.RuntimeFunc(func(context.Context) error { return runErr }),
			tracerProvider: tp,
			meterProvider:  metricnoop.NewMeterProvider(),
			loggerProvider: lognoop.NewLoggerProvider(),
		}

		err := rt.Run(context.Background())
		assert.ErrorIs(t, err, runErr)
		assert.ErrorIs(t, err, shutdownErr)
		assert.True(t, tp.called)
	})
}
