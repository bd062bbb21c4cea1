// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/z5labs/schemaroute"
	"github.com/z5labs/schemaroute/concurrent"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/z5labs/schemaroute/rest"

// Validation is the compiled form of an [Operation]. It is created once per
// route and shared by every request to that route.
type Validation struct {
	path   *predicate
	query  *predicate
	bodies map[string]*predicate
}

// Validator compiles operations into [Validation]s on first use and validates
// requests against them.
//
// Compiled validations are memoized by route key for the lifetime of the
// Validator. One Validator is shared by every [Router] mounted under the same
// root.
type Validator struct {
	cache        concurrent.Cache[*Validation]
	log          *slog.Logger
	failures     metric.Int64Counter
	compilations metric.Int64Counter
}

// ValidatorOption configures a [Validator].
type ValidatorOption func(*Validator)

// ValidatorLogger sets the logger used for compilation diagnostics.
func ValidatorLogger(log *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.log = log
	}
}

// NewValidator initializes a [Validator].
func NewValidator(opts ...ValidatorOption) *Validator {
	meter := otel.Meter(instrumentationName)

	failures, err := meter.Int64Counter(
		"rest.validation.failures",
		metric.WithDescription("Requests rejected by request validation."),
	)
	if err != nil {
		otel.Handle(err)
	}
	compilations, err := meter.Int64Counter(
		"rest.validation.compilations",
		metric.WithDescription("Operations compiled into request validators."),
	)
	if err != nil {
		otel.Handle(err)
	}

	v := &Validator{
		log:          schemaroute.Logger("rest"),
		failures:     failures,
		compilations: compilations,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Compile returns the [Validation] for the route identified by key,
// compiling op on first use.
func (v *Validator) Compile(key string, op Operation) (*Validation, error) {
	return v.cache.GetOr(key, func() (*Validation, error) {
		val, err := compileValidation(op)
		if err != nil {
			return nil, fmt.Errorf("failed to compile validation for %s: %w", key, err)
		}
		if v.compilations != nil {
			v.compilations.Add(context.Background(), 1)
		}
		v.log.Debug("compiled request validation", slog.String("route", key))
		return val, nil
	})
}

func compileValidation(op Operation) (*Validation, error) {
	var val Validation

	if len(op.Parameters) > 0 {
		path, query := parameterSchemas(nil, op.Parameters)

		var err error
		val.path, err = compilePredicate(path)
		if err != nil {
			return nil, fmt.Errorf("path parameters: %w", err)
		}
		val.query, err = compilePredicate(query)
		if err != nil {
			return nil, fmt.Errorf("query parameters: %w", err)
		}
	}

	if op.RequestBody != nil {
		val.bodies = make(map[string]*predicate, len(op.RequestBody.Content))
		for mt, content := range op.RequestBody.Content {
			key, _ := mediaTypeOf(mt)
			if content.Schema == nil {
				val.bodies[key] = nil
				continue
			}
			p, err := compilePredicate(content.Schema)
			if err != nil {
				return nil, fmt.Errorf("%s request body: %w", mt, err)
			}
			val.bodies[key] = p
		}
	}
	return &val, nil
}

// ValidateRequest validates r against op and returns the normalized input.
//
// The content type is checked before anything else, so a route declaring a
// request body rejects an unsupported content type with an
// [UnsupportedMediaTypeError] even when the body is empty. The body is only
// validated when it is required or not empty. Path and query violations are
// reported alongside body violations in a single [ValidationError].
func (v *Validator) ValidateRequest(r *http.Request, key string, op Operation) (*Input, error) {
	ctx := r.Context()

	val, err := v.Compile(key, op)
	if err != nil {
		return nil, err
	}

	in := &Input{
		Path:  pathParams(r),
		Query: valuesToMap(r.URL.Query()),
	}

	var details ErrorDetails
	if op.RequestBody != nil {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = UnknownContentType
		}

		mt, params := mediaTypeOf(contentType)
		p, ok := val.bodies[mt]
		if !ok {
			v.recordFailure(ctx, "content_type")
			return nil, newUnsupportedMediaTypeError(contentType)
		}

		raw, err := readBody(r)
		if err != nil {
			return nil, err
		}
		in.RawBody = raw
		in.MediaType = mt

		body, err := decodeBody(mt, params, raw)
		if err != nil {
			return nil, BadRequestError{
				Cause: MalformedBodyError{MediaType: mt, Cause: err},
			}
		}

		if op.RequestBody.Required || !isEmptyObject(body) {
			body, details.Body, err = p.validate(body)
			if err != nil {
				return nil, err
			}
		}
		in.Body = body
	}

	if val.path != nil {
		path, vs, err := val.path.validate(in.Path)
		if err != nil {
			return nil, err
		}
		in.Path, _ = path.(map[string]any)
		details.Path = vs
	}

	if val.query != nil {
		query, vs, err := val.query.validate(in.Query)
		if err != nil {
			return nil, err
		}
		in.Query, _ = query.(map[string]any)
		details.Query = vs
	}

	if details.empty() {
		return in, nil
	}

	if len(details.Path) > 0 {
		v.recordFailure(ctx, "path")
	}
	if len(details.Query) > 0 {
		v.recordFailure(ctx, "query")
	}
	if len(details.Body) > 0 {
		v.recordFailure(ctx, "body")
	}
	return nil, newValidationError(details)
}

func (v *Validator) recordFailure(ctx context.Context, partition string) {
	if v.failures == nil {
		return
	}
	v.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("partition", partition)))
}

// pathParams collects the URL parameters chi matched for the request,
// skipping the wildcards chi records for mounted routers.
func pathParams(r *http.Request) map[string]any {
	params := map[string]any{}

	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, k := range rctx.URLParams.Keys {
		if k == "" || k == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[k] = rctx.URLParams.Values[i]
	}
	return params
}
