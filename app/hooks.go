// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"io"
)

// HookFunc runs after the runtime it is attached to has returned.
type HookFunc func(context.Context) error

// HookRegistry collects post run hooks while a runtime is being built.
type HookRegistry struct {
	hooks []HookFunc
}

// OnPostRun registers a hook. Hooks run in the reverse order of registration
// so resources are released before the resources they were built from.
func (r *HookRegistry) OnPostRun(hook HookFunc) {
	r.hooks = append(r.hooks, hook)
}

// Close registers c to be closed after the runtime returns.
func (r *HookRegistry) Close(c io.Closer) {
	r.OnPostRun(func(context.Context) error {
		return c.Close()
	})
}

type hookRuntime struct {
	inner Runtime
	hooks []HookFunc
}

// Run runs the inner runtime and then every hook. The hooks receive a
// context which is detached from the cancellation of ctx since ctx is
// usually already done when they run. All errors are joined.
func (rt hookRuntime) Run(ctx context.Context) error {
	errs := []error{rt.inner.Run(ctx)}

	hookCtx := context.WithoutCancel(ctx)
	for i := len(rt.hooks) - 1; i >= 0; i-- {
		errs = append(errs, rt.hooks[i](hookCtx))
	}

	return errors.Join(errs...)
}

// WithHooks builds a runtime with f, giving f a registry for cleanup work.
// If f fails, any hooks it already registered are run before the error is
// returned.
func WithHooks[T Runtime](f func(context.Context, *HookRegistry) (T, error)) Builder[Runtime] {
	return BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		registry := &HookRegistry{}

		inner, err := f(ctx, registry)
		if err != nil {
			errs := []error{err}
			hookCtx := context.WithoutCancel(ctx)
			for i := len(registry.hooks) - 1; i >= 0; i-- {
				errs = append(errs, registry.hooks[i](hookCtx))
			}
			return nil, errors.Join(errs...)
		}

		return hookRuntime{
			inner: inner,
			hooks: registry.hooks,
		}, nil
	})
}
