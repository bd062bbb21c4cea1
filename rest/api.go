// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"net/http"

	"github.com/z5labs/schemaroute/health"

	"github.com/swaggest/openapi-go/openapi3"
)

// ApiOptions holds configuration values used when constructing an [Api].
// This struct is passed to [ApiOption] implementations to configure the API's
// router and OpenAPI document.
type ApiOptions struct {
	router           *Router
	spec             *openapi3.Spec
	readiness        health.Monitor
	liveness         health.Monitor
	notFound         http.Handler
	methodNotAllowed http.Handler
}

// ApiOption is an interface for configuring an [Api].
// Implementations can modify the API's router or OpenAPI document.
//
// Common implementations include:
//   - [Readiness] - configures the readiness endpoint
//   - [Liveness] - configures the liveness endpoint
//   - [NotFound] - customizes 404 handling
//   - [MethodNotAllowed] - customizes 405 handling
//   - any [RouterOption], e.g. [OnError]
type ApiOption interface {
	ApplyApiOption(*ApiOptions)
}

type apiOptionFunc func(*ApiOptions)

func (f apiOptionFunc) ApplyApiOption(ao *ApiOptions) {
	f(ao)
}

// Readiness configures the monitor reported at GET /health/readiness.
// It usually combines the backing services with [health.And] so that a
// failure names each one that is down.
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.readiness = m
	})
}

// Liveness configures the monitor reported at GET /health/liveness.
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.liveness = m
	})
}

// NotFound configures a custom handler for requests that don't match any registered routes.
// This overrides the default 404 Not Found behavior.
func NotFound(h http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.notFound = h
	})
}

// MethodNotAllowed configures a custom handler for requests to valid routes
// with unsupported HTTP methods. This overrides the default 405 Method Not Allowed behavior.
func MethodNotAllowed(h http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.methodNotAllowed = h
	})
}

// Description sets the description of the generated document.
func Description(s string) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.spec.Info.Description = &s
	})
}

// Server adds a server URL to the generated document.
func Server(url string) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.spec.Servers = append(ao.spec.Servers, openapi3.Server{URL: url})
	})
}

// Api is the root [Router] of an application.
//
// # Standard Features
//
// Every Api automatically provides:
//   - OpenAPI 3.0 document of every registered route at GET /openapi.json
//   - Default liveness endpoint at GET /health/liveness (returns 200 OK)
//   - Default readiness endpoint at GET /health/readiness (returns 200 OK)
//   - A [Validator] shared by every [Router] mounted beneath it
//
// # Usage
//
//	books := rest.NewRouter()
//	books.Get("/books/:id", getBookOp, getBookHandler)
//
//	api := rest.NewApi("Bookshelf", "v1.0.0")
//	api.Mount("/api/v1", books)
//	http.ListenAndServe(":8080", api)
//
// The document is generated on its first request, so every route must be
// registered before the Api starts serving.
type Api struct {
	*Router

	spec openapi3.Spec
}

// NewApi creates a new [Api] with the specified title and version.
func NewApi(title, version string, opts ...ApiOption) *Api {
	alwaysHealthy := new(health.Binary)
	alwaysHealthy.MarkHealthy()

	ao := &ApiOptions{
		router: NewRouter(WithValidator(NewValidator())),
		spec: &openapi3.Spec{
			Openapi: OpenAPIVersion,
			Info: openapi3.Info{
				Title:   title,
				Version: version,
			},
		},
		readiness: alwaysHealthy,
		liveness:  alwaysHealthy,
	}
	for _, opt := range opts {
		opt.ApplyApiOption(ao)
	}

	api := &Api{
		Router: ao.router,
		spec:   *ao.spec,
	}

	mux := ao.router.mux
	mux.Method(http.MethodGet, "/health/readiness", healthHandler(ao.readiness))
	mux.Method(http.MethodGet, "/health/liveness", healthHandler(ao.liveness))
	mux.Method(http.MethodGet, "/openapi.json", documentHandler(ao.router.log, func() (*openapi3.Spec, error) {
		return api.Document(), nil
	}))
	if ao.notFound != nil {
		mux.NotFound(ao.notFound.ServeHTTP)
	}
	if ao.methodNotAllowed != nil {
		mux.MethodNotAllowed(ao.methodNotAllowed.ServeHTTP)
	}

	return api
}

// Document generates the OpenAPI document of every route currently
// registered on the Api and the routers mounted beneath it.
func (api *Api) Document() *openapi3.Spec {
	return Document(api.spec, api.Routes())
}
