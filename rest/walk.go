// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/z5labs/schemaroute"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
)

// WalkOption configures [Walk] and [WalkHandler].
type WalkOption func(*walkOptions)

type walkOptions struct {
	log *slog.Logger
}

// WalkLogger sets the logger skipped routes are reported to.
func WalkLogger(log *slog.Logger) WalkOption {
	return func(wo *walkOptions) {
		wo.log = log
	}
}

var regexpParam = regexp.MustCompile(`\{(\w+):[^}]*\}`)

// Walk generates an OpenAPI document by walking a live chi router,
// including every router mounted beneath it. Only handlers carrying an
// [Operation], as returned by [Describe] or registered on a [Router], are
// documented. Opaque mounts are skipped with a warning.
func Walk(base openapi3.Spec, routes chi.Routes, opts ...WalkOption) (*openapi3.Spec, error) {
	wo := &walkOptions{
		log: schemaroute.Logger("rest"),
	}
	for _, opt := range opts {
		opt(wo)
	}

	var found []Route
	warned := make(map[string]bool)
	err := chi.Walk(routes, func(method, route string, h http.Handler, _ ...func(http.Handler) http.Handler) error {
		op, ok := DescriptionOf(h)
		if !ok {
			if strings.HasSuffix(route, "*") && !warned[route] {
				warned[route] = true
				wo.log.Warn(
					"skipping opaque mount while walking routes",
					slog.String("path", route),
				)
			}
			return nil
		}

		m, err := ParseMethod(method)
		if err != nil {
			wo.log.Warn(
				"skipping route with unsupported method",
				slog.String("method", method),
				slog.String("path", route),
			)
			return nil
		}

		found = append(found, Route{
			Method:    m,
			Path:      regexpParam.ReplaceAllString(route, "{$1}"),
			Operation: op,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk routes: %w", err)
	}
	return Document(base, found), nil
}

// WalkHandler serves the document [Walk] generates for routes. The routes
// are walked on the first request only.
func WalkHandler(base openapi3.Spec, routes chi.Routes, opts ...WalkOption) http.Handler {
	wo := &walkOptions{
		log: schemaroute.Logger("rest"),
	}
	for _, opt := range opts {
		opt(wo)
	}

	return documentHandler(wo.log, func() (*openapi3.Spec, error) {
		return Walk(base, routes, opts...)
	})
}
