// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import "sync"

// Route is a registered operation. Path is the raw path as registered,
// with colon style parameters, prefixed by any mount prefixes.
type Route struct {
	Method    Method
	Path      string
	Operation Operation
}

type childRegistry struct {
	registry *Registry
	prefix   string
}

// Registry collects the routes of one router along with the registries
// of routers mounted beneath it.
//
// Children are held by reference, so routes added to a child after it was
// attached show up in every ancestor. Duplicate routes are kept.
type Registry struct {
	mu       sync.RWMutex
	routes   []Route
	children []childRegistry
}

// Add appends a route to this registry.
func (r *Registry) Add(method Method, path string, op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = append(r.routes, Route{
		Method:    method,
		Path:      path,
		Operation: op,
	})
}

// AddChild attaches child under prefix. The prefix is prepended verbatim
// to every path of the child.
func (r *Registry) AddChild(child *Registry, prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.children = append(r.children, childRegistry{
		registry: child,
		prefix:   prefix,
	})
}

// Routes flattens the tree into a fresh list: own routes first, then each
// child's routes in attachment order.
func (r *Registry) Routes() []Route {
	r.mu.RLock()
	routes := make([]Route, len(r.routes))
	copy(routes, r.routes)
	children := make([]childRegistry, len(r.children))
	copy(children, r.children)
	r.mu.RUnlock()

	for _, child := range children {
		for _, route := range child.registry.Routes() {
			route.Path = child.prefix + route.Path
			routes = append(routes, route)
		}
	}
	return routes
}
