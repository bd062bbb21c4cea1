// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest binds declarative route descriptions to HTTP handlers.
//
// # Overview
//
// Every route is registered together with an [Operation] describing its
// parameters, request body and responses. At dispatch time the request is
// validated against the operation before the handler runs, and the
// registered operations are assembled into an OpenAPI 3.0 document.
//
// # Quick Start
//
//	op := rest.Operation{
//	    Parameters: []rest.Parameter{
//	        {Name: "q", In: openapi3.ParameterInQuery, Required: true, Schema: schema.String()},
//	        {Name: "limit", In: openapi3.ParameterInQuery, Schema: schema.Integer()},
//	    },
//	}
//
//	books := rest.NewRouter()
//	books.Get("/search", op, rest.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
//	    query := rest.QueryParams(r.Context())
//	    return rest.WriteJSON(w, http.StatusOK, query)
//	}))
//
//	api := rest.NewApi("Bookshelf", "v1.0.0")
//	api.Mount("/books", books)
//	http.ListenAndServe(":8080", api)
//
// The Api serves the document at GET /openapi.json along with
// GET /health/liveness and GET /health/readiness.
//
// # Validation
//
// Path and query parameters are validated as objects keyed by parameter
// name. The request body is validated with the schema declared for its
// content type. A content type without a declared schema is rejected with
// [UnsupportedMediaTypeError] before the body is read. Schema violations are
// reported together in a [ValidationError], partitioned into path, query and
// body. Values are normalized while they are validated: defaults are filled
// in, undeclared properties are dropped and strings are coerced into the
// declared types.
//
// # Error Handling
//
// Validation errors, handler errors and recovered handler panics are all
// forwarded to the [ErrorHandler] of the router. [NewProblemDetailsErrorHandler]
// renders them as RFC 7807 responses.
//
// # Documents
//
// [Document] builds a document from [Router.Routes]. [Walk] builds one by
// walking any chi router for handlers created with [Describe].
package rest
