// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"github.com/swaggest/openapi-go/openapi3"
)

// OpenAPIVersion is the version of generated documents.
const OpenAPIVersion = "3.0.3"

var colonParam = regexp.MustCompile(`:(\w+)`)

// NormalizePath rewrites colon style path parameters into the brace style
// used by OpenAPI, e.g. "/posts/:id" becomes "/posts/{id}".
func NormalizePath(path string) string {
	return colonParam.ReplaceAllString(path, "{$1}")
}

// Document generates an OpenAPI document from routes, e.g. the result of
// [Router.Routes]. Operations registered for the same normalized path are
// merged into one path item. The info, servers and components of base are
// kept and its paths are replaced.
func Document(base openapi3.Spec, routes []Route) *openapi3.Spec {
	spec := base
	if spec.Openapi == "" {
		spec.Openapi = OpenAPIVersion
	}
	spec.Paths = openapi3.Paths{
		MapOfPathItemValues: make(map[string]openapi3.PathItem),
	}

	for _, route := range routes {
		path := NormalizePath(route.Path)
		if path == "" {
			path = "/"
		}

		item := spec.Paths.MapOfPathItemValues[path]
		if item.MapOfOperationValues == nil {
			item.MapOfOperationValues = make(map[string]openapi3.Operation)
		}
		item.MapOfOperationValues[route.Method.String()] = route.Operation.withDefaults().OpenAPI()
		spec.Paths.MapOfPathItemValues[path] = item
	}
	return &spec
}

// documentHandler serves the document produced by gen. The document is
// generated on the first request and reused afterwards.
func documentHandler(log *slog.Logger, gen func() (*openapi3.Spec, error)) http.Handler {
	render := sync.OnceValues(func() ([]byte, error) {
		spec, err := gen()
		if err != nil {
			return nil, err
		}
		return json.Marshal(spec)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := render()
		if err != nil {
			log.ErrorContext(
				r.Context(),
				"failed to encode openapi schema to json",
				slog.Any("error", err),
			)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, err = w.Write(b)
		if err != nil {
			log.ErrorContext(r.Context(), "failed to write openapi schema", slog.Any("error", err))
		}
	})
}
