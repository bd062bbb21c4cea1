// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package concurrent provides concurrency safe building blocks.
package concurrent

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes values by key for the lifetime of the Cache.
//
// Concurrent misses for the same key share a single call to the loader
// passed to [Cache.GetOr], so every caller observes the same value.
// Loader errors are returned to all waiting callers and are not cached.
//
// The zero value is ready to use.
type Cache[V any] struct {
	mu    sync.RWMutex
	data  map[string]V
	group singleflight.Group
}

// Get returns the value stored for k, if any.
func (c *Cache[V]) Get(k string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[k]
	return v, ok
}

// GetOr returns the value stored for k or loads, stores and returns it with f.
func (c *Cache[V]) GetOr(k string, f func() (V, error)) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(k, func() (any, error) {
		if v, ok := c.Get(k); ok {
			return v, nil
		}

		v, err := f()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.data == nil {
			c.data = make(map[string]V)
		}
		c.data[k] = v
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len reports the number of stored values.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
