// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/z5labs/schemaroute"

	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler serves a request which already passed validation. A returned
// error is forwarded to the [ErrorHandler] of the router.
type Handler interface {
	Handle(http.ResponseWriter, *http.Request) error
}

// HandlerFunc is a func implementation of [Handler].
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Middleware wraps an [http.Handler], e.g. for authentication or logging.
// Route middleware runs before request validation.
type Middleware = func(http.Handler) http.Handler

// Describer is implemented by installed handlers which carry the
// [Operation] they serve.
type Describer interface {
	Operation() Operation
}

// DescriptionOf recovers the [Operation] attached to an installed handler.
func DescriptionOf(h http.Handler) (Operation, bool) {
	d, ok := h.(Describer)
	if !ok {
		return Operation{}, false
	}
	return d.Operation(), true
}

// dispatch validates the request, then runs h. Every failure, including a
// panic inside h, is forwarded to eh.
func dispatch(w http.ResponseWriter, r *http.Request, v *Validator, key string, op Operation, h Handler, eh ErrorHandler) {
	tracer := otel.Tracer(instrumentationName)

	ctx, span := tracer.Start(r.Context(), "rest.handle", trace.WithAttributes(
		attribute.String("http.route", key),
		attribute.String("http.request.method", r.Method),
	))
	defer span.End()

	err := serve(w, r.WithContext(ctx), v, key, op, h)
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	eh.OnError(ctx, w, err)
}

func serve(w http.ResponseWriter, r *http.Request, v *Validator, key string, op Operation, h Handler) (err error) {
	defer try.Recover(&err)

	ctx, span := otel.Tracer(instrumentationName).Start(r.Context(), "rest.validate")
	in, err := v.ValidateRequest(r.WithContext(ctx), key, op)
	span.End()
	if err != nil {
		return err
	}

	return h.Handle(w, r.WithContext(withInput(r.Context(), in)))
}

// DescribeOption configures a handler created by [Describe].
type DescribeOption func(*describedHandler)

// DescribeWith sets the [Validator] the handler compiles its operation with.
func DescribeWith(v *Validator) DescribeOption {
	return func(dh *describedHandler) {
		dh.validator = v
	}
}

// DescribeErrorHandler sets the [ErrorHandler] the handler forwards errors to.
func DescribeErrorHandler(eh ErrorHandler) DescribeOption {
	return func(dh *describedHandler) {
		dh.errHandler = eh
	}
}

var (
	sharedValidator = sync.OnceValue(func() *Validator {
		return NewValidator()
	})

	fallbackErrorHandler = sync.OnceValue(func() ErrorHandler {
		return defaultErrorHandler(schemaroute.LogHandler("rest"))
	})
)

type describedHandler struct {
	op         Operation
	handler    Handler
	key        string
	validator  *Validator
	errHandler ErrorHandler
}

// Describe binds op to h for use with any router. The returned handler
// validates requests against op and exposes op through [DescriptionOf],
// so [Walk] can document it.
func Describe(op Operation, h Handler, opts ...DescribeOption) http.Handler {
	dh := &describedHandler{
		op:      op.withDefaults(),
		handler: h,
	}
	for _, opt := range opts {
		opt(dh)
	}
	if dh.validator == nil {
		dh.validator = sharedValidator()
	}
	if dh.errHandler == nil {
		dh.errHandler = fallbackErrorHandler()
	}
	dh.key = fmt.Sprintf("describe:%p", dh)
	return dh
}

// Operation implements the [Describer] interface.
func (dh *describedHandler) Operation() Operation {
	return dh.op
}

// ServeHTTP implements the [http.Handler] interface.
func (dh *describedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dispatch(w, r, dh.validator, dh.key, dh.op, dh.handler, dh.errHandler)
}
