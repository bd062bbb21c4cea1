// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// HttpResponseWriter is implemented by errors which describe a client
// mistake and know the response it deserves, e.g. [ValidationError].
type HttpResponseWriter interface {
	WriteHttpResponse(context.Context, http.ResponseWriter)
}

// ErrorHandler receives every error produced while dispatching a request:
// validation failures, unsupported media types, handler errors and
// recovered handler panics.
type ErrorHandler interface {
	OnError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is a func implementation of [ErrorHandler].
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// OnError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

// defaultErrorHandler lets client errors write themselves and logs them at
// warn level. Anything else is a 500 logged at error level, unless the
// client already went away.
func defaultErrorHandler(h slog.Handler) ErrorHandlerFunc {
	log := slog.New(h)

	return func(ctx context.Context, w http.ResponseWriter, err error) {
		var hrw HttpResponseWriter
		if errors.As(err, &hrw) {
			log.WarnContext(ctx, "rejected request", slog.Any("error", err))
			hrw.WriteHttpResponse(ctx, w)
			return
		}

		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			log.DebugContext(ctx, "client cancelled request", slog.Any("error", err))
			return
		}

		log.ErrorContext(ctx, "request failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// BadRequestError represents a 400 Bad Request error which is not
// a schema violation, e.g. a body which cannot be decoded.
type BadRequestError struct {
	Cause error
}

func (e BadRequestError) Error() string {
	return fmt.Sprintf("bad request error: %v", e.Cause)
}

// Unwrap returns the underlying cause of the bad request.
func (e BadRequestError) Unwrap() error {
	return e.Cause
}

// WriteHttpResponse implements [HttpResponseWriter]. The cause is only
// echoed for malformed bodies since other causes may carry internals.
func (e BadRequestError) WriteHttpResponse(ctx context.Context, rw http.ResponseWriter) {
	msg := http.StatusText(http.StatusBadRequest)

	var mbe MalformedBodyError
	if errors.As(e.Cause, &mbe) {
		msg = mbe.Error()
	}
	http.Error(rw, msg, http.StatusBadRequest)
}

// MalformedBodyError reports a request body which could not be decoded
// as its declared media type.
type MalformedBodyError struct {
	MediaType string
	Cause     error
}

func (e MalformedBodyError) Error() string {
	return fmt.Sprintf("malformed %s body: %v", e.MediaType, e.Cause)
}

// Unwrap returns the decoding error.
func (e MalformedBodyError) Unwrap() error {
	return e.Cause
}
