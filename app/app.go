// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app builds and runs the long lived processes of a service.
//
// A process is described by a [Builder] which produces a [Runtime]. [Run]
// ties the runtime to the process signals and [WithHooks] attaches cleanup
// work which runs once the runtime has returned.
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Builder produces a value, typically a [Runtime], from a context.
type Builder[T any] interface {
	Build(context.Context) (T, error)
}

// BuilderFunc adapts a function to a [Builder].
type BuilderFunc[T any] func(context.Context) (T, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context) (T, error) {
	return f(ctx)
}

// Build creates a Builder from a function.
func Build[T any](f func(context.Context) (T, error)) Builder[T] {
	return BuilderFunc[T](f)
}

// Bind feeds the value built by b into f and builds the result.
func Bind[A, B any](b Builder[A], f func(A) Builder[B]) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a).Build(ctx)
	})
}

// Map transforms the value built by b.
func Map[A, B any](b Builder[A], f func(A) B) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	})
}

// Runtime is a blocking process which returns when ctx is cancelled or it fails.
type Runtime interface {
	Run(context.Context) error
}

// RuntimeFunc adapts a function to a [Runtime].
type RuntimeFunc func(context.Context) error

// Run implements the [Runtime] interface.
func (f RuntimeFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// BuildError reports that the runtime could not be built, e.g. because a
// backing service was unreachable at startup.
type BuildError struct {
	Cause error
}

// Error implements the [error] interface.
func (e BuildError) Error() string {
	return "failed to build runtime: " + e.Cause.Error()
}

// Unwrap returns the underlying build failure.
func (e BuildError) Unwrap() error {
	return e.Cause
}

// Run builds the runtime and runs it until it returns or the process
// receives an interrupt or SIGTERM. Build failures are returned as a
// [BuildError]. A runtime which stops with [context.Canceled] after a
// shutdown signal has exited cleanly.
func Run[T Runtime](ctx context.Context, builder Builder[T]) error {
	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := builder.Build(sigCtx)
	if err != nil {
		return BuildError{Cause: err}
	}

	err = rt.Run(sigCtx)
	if errors.Is(err, context.Canceled) && sigCtx.Err() != nil && ctx.Err() == nil {
		return nil
	}
	return err
}

// LogError logs err, if any, to the given handler. Build failures and
// runtime failures are logged with distinct messages.
func LogError(handler slog.Handler, err error) {
	if err == nil {
		return
	}

	log := slog.New(handler)

	var berr BuildError
	if errors.As(err, &berr) {
		log.Error("failed to start", slog.Any("error", berr.Cause))
		return
	}
	log.Error("stopped with error", slog.Any("error", err))
}
