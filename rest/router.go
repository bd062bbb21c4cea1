// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/z5labs/schemaroute"

	"github.com/go-chi/chi/v5"
)

// ErrRouterAlreadyMounted is the panic value raised when a [Router] is
// mounted a second time.
var ErrRouterAlreadyMounted = errors.New("rest: router is already mounted")

// RouterOption configures a [Router]. A RouterOption is also an [ApiOption]
// which configures the root router of the [Api].
type RouterOption func(*Router)

// ApplyApiOption implements the [ApiOption] interface.
func (o RouterOption) ApplyApiOption(ao *ApiOptions) {
	o(ao.router)
}

// OnError sets the [ErrorHandler] for routes registered on the router and
// every router mounted beneath it which does not set its own.
func OnError(eh ErrorHandler) RouterOption {
	return func(r *Router) {
		r.errHandler = eh
	}
}

// WithValidator makes the router a root router which validates requests
// with v. Routers mounted beneath it share v.
func WithValidator(v *Validator) RouterOption {
	return func(r *Router) {
		r.validator = v
	}
}

// WithLogger sets the logger used by the router.
func WithLogger(log *slog.Logger) RouterOption {
	return func(r *Router) {
		r.log = log
	}
}

// WithMiddleware appends middleware which runs for every route of the
// router, before route specific middleware.
func WithMiddleware(mws ...Middleware) RouterOption {
	return func(r *Router) {
		r.mux.Use(mws...)
	}
}

// Router registers described routes on a chi router and records them in a
// [Registry] for document generation.
//
// A Router created without [WithValidator] can not serve requests until it
// is mounted, directly or transitively, under one that has a [Validator].
type Router struct {
	mux        *chi.Mux
	routes     *Registry
	log        *slog.Logger
	errHandler ErrorHandler

	mu        sync.RWMutex
	parent    *Router
	prefix    string
	validator *Validator
}

// NewRouter initializes a [Router].
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		mux:    chi.NewMux(),
		routes: &Registry{},
		log:    schemaroute.Logger("rest"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends middleware to every route of the router. Like chi, it must be
// called before any route is registered.
func (r *Router) Use(mws ...Middleware) {
	r.mux.Use(mws...)
}

// Handle registers h for method and path. Path parameters use the colon
// style, e.g. "/posts/:id". Middleware runs in the given order before the
// request is validated against op.
func (r *Router) Handle(method Method, path string, op Operation, h Handler, mws ...Middleware) {
	register, ok := registrars[method]
	if !ok {
		panic(fmt.Errorf("rest: unsupported http method: %s", method))
	}

	op = op.withDefaults()
	r.routes.Add(method, path, op)

	oh := &operationHandler{
		method:  method,
		path:    path,
		op:      op,
		handler: h,
		router:  r,
	}

	var cr chi.Router = r.mux
	if len(mws) > 0 {
		cr = r.mux.With(mws...)
	}
	register(cr, routePattern(path), oh)

	r.log.Debug(
		"registered route",
		slog.String("method", method.String()),
		slog.String("path", path),
	)
}

// Get registers a GET route. See [Router.Handle].
func (r *Router) Get(path string, op Operation, h Handler, mws ...Middleware) {
	r.Handle(MethodGet, path, op, h, mws...)
}

// Post registers a POST route. See [Router.Handle].
func (r *Router) Post(path string, op Operation, h Handler, mws ...Middleware) {
	r.Handle(MethodPost, path, op, h, mws...)
}

// Put registers a PUT route. See [Router.Handle].
func (r *Router) Put(path string, op Operation, h Handler, mws ...Middleware) {
	r.Handle(MethodPut, path, op, h, mws...)
}

// Patch registers a PATCH route. See [Router.Handle].
func (r *Router) Patch(path string, op Operation, h Handler, mws ...Middleware) {
	r.Handle(MethodPatch, path, op, h, mws...)
}

// Delete registers a DELETE route. See [Router.Handle].
func (r *Router) Delete(path string, op Operation, h Handler, mws ...Middleware) {
	r.Handle(MethodDelete, path, op, h, mws...)
}

// Mount attaches sub under prefix, both in the live chi router and in the
// route registry. Routes added to sub afterwards are visible through
// [Router.Routes] of every ancestor.
//
// Mounting the same router twice panics with [ErrRouterAlreadyMounted].
func (r *Router) Mount(prefix string, sub *Router) {
	sub.mu.Lock()
	if sub.parent != nil {
		sub.mu.Unlock()
		panic(ErrRouterAlreadyMounted)
	}
	sub.parent = r
	sub.prefix = prefix
	sub.mu.Unlock()

	r.mux.Mount(mountPattern(prefix), sub.mux)
	r.routes.AddChild(sub.routes, prefix)

	r.log.Debug("mounted router", slog.String("prefix", prefix))
}

// MountHandler attaches an arbitrary handler under prefix. It is served
// like any other mount but contributes no routes to the registry.
func (r *Router) MountHandler(prefix string, h http.Handler) {
	r.mux.Mount(mountPattern(prefix), h)
}

// Registry returns the route registry of the router.
func (r *Router) Registry() *Registry {
	return r.routes
}

// Routes returns every route registered on the router and the routers
// mounted beneath it.
func (r *Router) Routes() []Route {
	return r.routes.Routes()
}

// Chi exposes the underlying chi router, e.g. for [Walk].
func (r *Router) Chi() chi.Routes {
	return r.mux
}

// ServeHTTP implements the [http.Handler] interface.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// resolve walks up the mount chain and returns the shared validator, the
// full prefix of r and the nearest error handler.
func (r *Router) resolve() (*Validator, string, ErrorHandler) {
	var (
		v      *Validator
		prefix string
		eh     ErrorHandler
	)
	for cur := r; cur != nil; {
		cur.mu.RLock()
		if eh == nil {
			eh = cur.errHandler
		}
		if cur.validator != nil {
			v = cur.validator
		}
		next := cur.parent
		if next != nil {
			prefix = cur.prefix + prefix
		}
		cur.mu.RUnlock()

		if v != nil {
			break
		}
		cur = next
	}
	if eh == nil {
		eh = fallbackErrorHandler()
	}
	return v, prefix, eh
}

type operationHandler struct {
	method  Method
	path    string
	op      Operation
	handler Handler
	router  *Router
}

// Operation implements the [Describer] interface.
func (oh *operationHandler) Operation() Operation {
	return oh.op
}

// ServeHTTP implements the [http.Handler] interface.
func (oh *operationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, prefix, eh := oh.router.resolve()
	if v == nil {
		panic(ErrRouterNotMounted)
	}

	key := oh.method.String() + " " + prefix + oh.path
	dispatch(w, r, v, key, oh.op, oh.handler, eh)
}

func routePattern(path string) string {
	if path == "" {
		return "/"
	}
	return NormalizePath(path)
}

func mountPattern(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return NormalizePath(prefix)
}
