// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health reports whether a service and the backing services it
// depends on can take requests. The monitors back the liveness and
// readiness endpoints of rest.Api.
package health

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Monitor reports the current health of one component.
type Monitor interface {
	Healthy(context.Context) (bool, error)
}

// MonitorFunc is a func implementation of [Monitor].
type MonitorFunc func(context.Context) (bool, error)

// Healthy implements the [Monitor] interface.
func (f MonitorFunc) Healthy(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Pinger is implemented by clients of backing services, e.g. a database
// pool or a Kafka client.
type Pinger interface {
	Ping(context.Context) error
}

// Ping returns a [Monitor] which is healthy while p answers a ping within
// timeout. A zero timeout only bounds the ping by the context.
func Ping(p Pinger, timeout time.Duration) Monitor {
	return MonitorFunc(func(ctx context.Context) (bool, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		err := p.Ping(ctx)
		return err == nil, err
	})
}

// Named prefixes errors of m with name, so a failed readiness check says
// which backing service is down.
func Named(name string, m Monitor) Monitor {
	return MonitorFunc(func(ctx context.Context) (bool, error) {
		healthy, err := m.Healthy(ctx)
		if err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
		return healthy, nil
	})
}

// Binary is a [Monitor] toggled by its owner. The zero value is unhealthy.
type Binary struct {
	healthy atomic.Bool
}

// Set stores the state.
func (b *Binary) Set(healthy bool) {
	b.healthy.Store(healthy)
}

// MarkUnhealthy is shorthand for Set(false).
func (b *Binary) MarkUnhealthy() {
	b.Set(false)
}

// MarkHealthy is shorthand for Set(true).
func (b *Binary) MarkHealthy() {
	b.Set(true)
}

// Healthy implements the [Monitor] interface.
func (b *Binary) Healthy(context.Context) (bool, error) {
	return b.healthy.Load(), nil
}

// AndMonitor is healthy only while every monitor is. All monitors are
// checked on each call and their errors are joined.
type AndMonitor []Monitor

// And returns an [AndMonitor] over ms.
func And(ms ...Monitor) AndMonitor {
	return AndMonitor(ms)
}

// Healthy implements the [Monitor] interface.
func (am AndMonitor) Healthy(ctx context.Context) (bool, error) {
	all := true
	var errs []error
	for _, m := range am {
		healthy, err := m.Healthy(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		all = all && healthy && err == nil
	}
	return all, errors.Join(errs...)
}

// OrMonitor is healthy as soon as one monitor is. Errors only surface
// when no monitor is healthy.
type OrMonitor []Monitor

// Or returns an [OrMonitor] over ms.
func Or(ms ...Monitor) OrMonitor {
	return OrMonitor(ms)
}

// Healthy implements the [Monitor] interface.
func (om OrMonitor) Healthy(ctx context.Context) (bool, error) {
	var errs []error
	for _, m := range om {
		healthy, err := m.Healthy(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if healthy {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}
