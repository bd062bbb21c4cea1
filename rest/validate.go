// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/z5labs/schemaroute"

	"github.com/z5labs/sdk-go/try"
)

// ValidateOption configures the middleware returned by [Validate].
type ValidateOption func(*validateOptions)

type validateOptions struct {
	log        *slog.Logger
	errHandler ErrorHandler
}

// ValidateLogger sets the logger composite schema warnings are written to.
func ValidateLogger(log *slog.Logger) ValidateOption {
	return func(vo *validateOptions) {
		vo.log = log
	}
}

// ValidateErrorHandler sets the [ErrorHandler] rejected requests are
// forwarded to.
func ValidateErrorHandler(eh ErrorHandler) ValidateOption {
	return func(vo *validateOptions) {
		vo.errHandler = eh
	}
}

// Validate returns middleware which checks a request against the composite
// [RequestSchema] of op in a single validation pass. Only JSON bodies are
// checked. On success the normalized input is available through
// [InputFrom] and its accessors.
//
// Routes registered on a [Router] are validated per media type instead and
// do not need this middleware.
func Validate(op Operation, opts ...ValidateOption) (Middleware, error) {
	vo := &validateOptions{
		log:        schemaroute.Logger("rest"),
		errHandler: fallbackErrorHandler(),
	}
	for _, opt := range opts {
		opt(vo)
	}

	p, err := compilePredicate(requestSchema(vo.log, op))
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schema: %w", err)
	}

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, err := validateComposite(r, p, op)
			if err != nil {
				vo.errHandler.OnError(r.Context(), w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withInput(r.Context(), in)))
		})
	}
	return mw, nil
}

func validateComposite(r *http.Request, p *predicate, op Operation) (_ *Input, err error) {
	defer try.Recover(&err)

	instance := map[string]any{
		"params": pathParams(r),
		"query":  valuesToMap(r.URL.Query()),
	}

	var raw []byte
	var mt string
	if op.RequestBody != nil {
		raw, err = readBody(r)
		if err != nil {
			return nil, err
		}

		var params map[string]string
		mt, params = mediaTypeOf(r.Header.Get("Content-Type"))
		if len(raw) > 0 && isJSONMediaType(mt) {
			body, err := decodeBody(mt, params, raw)
			if err != nil {
				return nil, BadRequestError{
					Cause: MalformedBodyError{MediaType: mt, Cause: err},
				}
			}
			instance["body"] = body
		}
	}

	v, vs, err := p.validate(instance)
	if err != nil {
		return nil, err
	}
	if len(vs) > 0 {
		return nil, newValidationError(partition(vs))
	}

	normalized, _ := v.(map[string]any)
	in := &Input{RawBody: raw, MediaType: mt}
	in.Path, _ = normalized["params"].(map[string]any)
	in.Query, _ = normalized["query"].(map[string]any)
	in.Body = normalized["body"]
	return in, nil
}

// partition splits composite violations by the request location they refer
// to and makes their instance paths relative to that location.
func partition(vs []Violation) ErrorDetails {
	var details ErrorDetails
	for _, v := range vs {
		loc, rest := splitLocation(v.InstancePath)
		if loc == "" && v.Keyword == "required" {
			loc, _ = v.Params["missingProperty"].(string)
		}
		v.InstancePath = rest

		switch loc {
		case "params":
			details.Path = append(details.Path, v)
		case "query":
			details.Query = append(details.Query, v)
		default:
			details.Body = append(details.Body, v)
		}
	}
	return details
}

func splitLocation(instancePath string) (string, string) {
	trimmed := strings.TrimPrefix(instancePath, "/")
	if trimmed == "" {
		return "", ""
	}
	loc, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return loc, ""
	}
	return loc, "/" + rest
}
