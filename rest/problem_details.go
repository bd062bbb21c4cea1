// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/z5labs/schemaroute"
)

// ProblemDetail represents an RFC 7807 Problem Details error response.
//
// Embed this struct in your custom error types to add extension fields.
// [ValidationError] and [UnsupportedMediaTypeError] are built this way.
//
// Reference: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	// Defaults to "about:blank" when the problem has no specific type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
// Returns the Detail field if present, otherwise returns the Title.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

type problemDetailMarker interface {
	statusCode() int
}

func (p ProblemDetail) statusCode() int {
	return p.Status
}

func writeProblem(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// ProblemDetailsErrorHandler is an [ErrorHandler] that returns RFC 7807 Problem Details responses.
//
// It provides three-tier error detection:
//  1. Errors embedding [ProblemDetail] are marshaled directly with all extension fields
//  2. Errors implementing [HttpResponseWriter] are converted to a standard Problem Details body
//  3. Generic errors become a 500 Internal Server Error with a fixed detail message
//
// Only errors embedding [ProblemDetail] include their own detail, so internal
// error messages never reach API clients.
type ProblemDetailsErrorHandler struct {
	defaultType string
	log         *slog.Logger
}

// ProblemDetailsOption configures a [ProblemDetailsErrorHandler].
type ProblemDetailsOption func(*ProblemDetailsErrorHandler)

// WithDefaultType sets the base type URI for problems which do not set one.
// Defaults to "about:blank" per RFC 7807. A base URI such as
// "https://api.example.com/problems/" gets the problem name appended.
func WithDefaultType(uri string) ProblemDetailsOption {
	return func(h *ProblemDetailsErrorHandler) {
		h.defaultType = uri
	}
}

// WithProblemLogger overrides the logger errors are recorded with.
func WithProblemLogger(log *slog.Logger) ProblemDetailsOption {
	return func(h *ProblemDetailsErrorHandler) {
		h.log = log
	}
}

// NewProblemDetailsErrorHandler creates a new Problem Details error handler.
func NewProblemDetailsErrorHandler(opts ...ProblemDetailsOption) *ProblemDetailsErrorHandler {
	h := &ProblemDetailsErrorHandler{
		defaultType: "about:blank",
		log:         schemaroute.Logger("rest"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnError implements the [ErrorHandler] interface.
func (h *ProblemDetailsErrorHandler) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	h.log.ErrorContext(ctx, "sending error response", slog.Any("error", err))

	var body any
	var status int
	if pd, ok := err.(problemDetailMarker); ok {
		body, status = err, pd.statusCode()
	} else {
		pd := h.convert(err)
		body, status = pd, pd.Status
	}

	encodeErr := writeProblem(w, status, body)
	if encodeErr != nil {
		h.log.ErrorContext(ctx, "failed to encode problem details", slog.Any("error", encodeErr))
	}
}

func (h *ProblemDetailsErrorHandler) convert(err error) ProblemDetail {
	var badRequest BadRequestError
	if errors.As(err, &badRequest) {
		pd := ProblemDetail{
			Type:   h.typeURI("bad-request"),
			Title:  "Bad Request",
			Status: http.StatusBadRequest,
		}

		var malformed MalformedBodyError
		if errors.As(badRequest.Cause, &malformed) {
			pd.Type = h.typeURI("malformed-body")
			pd.Title = "Malformed Body"
			pd.Detail = "The request body could not be decoded as " + malformed.MediaType + "."
		}
		return pd
	}

	return ProblemDetail{
		Type:   h.typeURI("internal-error"),
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: "An internal server error occurred.",
	}
}

func (h *ProblemDetailsErrorHandler) typeURI(problem string) string {
	if h.defaultType == "about:blank" {
		return h.defaultType
	}
	return h.defaultType + problem
}
