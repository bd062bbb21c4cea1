// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by the errors returned from request validation.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeRequestTooLarge      = "REQUEST_TOO_LARGE"
)

// UnknownContentType is reported when a request declares no content type.
const UnknownContentType = "unknown"

// ErrRouterNotMounted is the panic value raised when a route is
// dispatched by a [Router] which has no [Validator], i.e. it was
// never mounted under a root router.
var ErrRouterNotMounted = errors.New("rest: router must be mounted before serving requests")

// ErrorDetails partitions violations by request location.
type ErrorDetails struct {
	Path  []Violation `json:"path,omitempty"`
	Query []Violation `json:"query,omitempty"`
	Body  []Violation `json:"body,omitempty"`
}

func (d ErrorDetails) empty() bool {
	return len(d.Path) == 0 && len(d.Query) == 0 && len(d.Body) == 0
}

// ValidationError reports schema violations in the path parameters,
// query parameters or body of a request.
type ValidationError struct {
	ProblemDetail
	Code    string       `json:"code"`
	Details ErrorDetails `json:"details"`
}

func newValidationError(details ErrorDetails) ValidationError {
	return ValidationError{
		ProblemDetail: ProblemDetail{
			Type:   "about:blank",
			Title:  "Validation failed",
			Status: http.StatusBadRequest,
		},
		Code:    CodeValidation,
		Details: details,
	}
}

func (e ValidationError) Error() string {
	n := len(e.Details.Path) + len(e.Details.Query) + len(e.Details.Body)
	return fmt.Sprintf("validation failed with %d violation(s)", n)
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e ValidationError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	writeProblem(w, e.Status, e)
}

// UnsupportedMediaTypeError reports a request whose content type has no
// declared request body.
type UnsupportedMediaTypeError struct {
	ProblemDetail
	Code        string `json:"code"`
	ContentType string `json:"contentType"`
}

func newUnsupportedMediaTypeError(contentType string) UnsupportedMediaTypeError {
	return UnsupportedMediaTypeError{
		ProblemDetail: ProblemDetail{
			Type:   "about:blank",
			Title:  "Unsupported media type",
			Status: http.StatusUnsupportedMediaType,
			Detail: fmt.Sprintf("content type %q is not supported", contentType),
		},
		Code:        CodeUnsupportedMediaType,
		ContentType: contentType,
	}
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e UnsupportedMediaTypeError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	writeProblem(w, e.Status, e)
}

// RequestTooLargeError reports a request body which exceeded the limit
// installed by [http.MaxBytesHandler] or [http.MaxBytesReader].
type RequestTooLargeError struct {
	ProblemDetail
	Code  string `json:"code"`
	Limit int64  `json:"limit"`
}

func newRequestTooLargeError(limit int64) RequestTooLargeError {
	return RequestTooLargeError{
		ProblemDetail: ProblemDetail{
			Type:   "about:blank",
			Title:  "Request entity too large",
			Status: http.StatusRequestEntityTooLarge,
			Detail: fmt.Sprintf("request body exceeds %d bytes", limit),
		},
		Code:  CodeRequestTooLarge,
		Limit: limit,
	}
}

func (e RequestTooLargeError) Error() string {
	return e.Detail
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e RequestTooLargeError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	writeProblem(w, e.Status, e)
}
