// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as an application/json response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", jsonMediaType)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

// Producer returns a response value without consuming a request body.
// Path and query values are available through the accessors of ctx.
type Producer[T any] interface {
	Produce(context.Context) (*T, error)
}

// ProducerFunc is an adapter to allow the use of ordinary functions
// as [Producer]s.
type ProducerFunc[T any] func(context.Context) (*T, error)

// Produce implements the [Producer] interface.
func (f ProducerFunc[T]) Produce(ctx context.Context) (*T, error) {
	return f(ctx)
}

// Consumer consumes a request body without returning a response value.
type Consumer[T any] interface {
	Consume(context.Context, *T) error
}

// ConsumerFunc is an adapter to allow the use of ordinary functions
// as [Consumer]s.
type ConsumerFunc[T any] func(context.Context, *T) error

// Consume implements the [Consumer] interface.
func (f ConsumerFunc[T]) Consume(ctx context.Context, req *T) error {
	return f(ctx, req)
}

// BodyHandler maps a request body to a response value.
type BodyHandler[Req, Resp any] interface {
	Handle(context.Context, *Req) (*Resp, error)
}

// BodyHandlerFunc is an adapter to allow the use of ordinary functions
// as [BodyHandler]s.
type BodyHandlerFunc[Req, Resp any] func(context.Context, *Req) (*Resp, error)

// Handle implements the [BodyHandler] interface.
func (f BodyHandlerFunc[Req, Resp]) Handle(ctx context.Context, req *Req) (*Resp, error) {
	return f(ctx, req)
}

// ResponseOption configures the typed handler adapters.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	status int
}

// Status overrides the status code of a successful response.
func Status(code int) ResponseOption {
	return func(ro *responseOptions) {
		ro.status = code
	}
}

func responseStatus(def int, opts []ResponseOption) int {
	ro := &responseOptions{status: def}
	for _, opt := range opts {
		opt(ro)
	}
	return ro.status
}

// ProduceJSON adapts p into a [Handler] which writes the produced value as
// JSON, with status 200 unless [Status] says otherwise.
func ProduceJSON[T any](p Producer[T], opts ...ResponseOption) Handler {
	status := responseStatus(http.StatusOK, opts)

	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		resp, err := p.Produce(r.Context())
		if err != nil {
			return err
		}
		return WriteJSON(w, status, resp)
	})
}

// ConsumeOnly adapts c into a [Handler] which decodes the validated body
// into T and answers with an empty response, status 204 by default.
//
// The body is the normalized value of any declared media type, so form
// and multipart fields decode through their json struct tags as well.
func ConsumeOnly[T any](c Consumer[T], opts ...ResponseOption) Handler {
	status := responseStatus(http.StatusNoContent, opts)

	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		req, err := DecodeBody[T](r.Context())
		if err != nil {
			return err
		}

		err = c.Consume(r.Context(), &req)
		if err != nil {
			return err
		}
		w.WriteHeader(status)
		return nil
	})
}

// HandleJSON adapts h into a [Handler] which decodes the validated body
// into Req and writes the returned value as JSON.
func HandleJSON[Req, Resp any](h BodyHandler[Req, Resp], opts ...ResponseOption) Handler {
	status := responseStatus(http.StatusOK, opts)

	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		req, err := DecodeBody[Req](r.Context())
		if err != nil {
			return err
		}

		resp, err := h.Handle(r.Context(), &req)
		if err != nil {
			return err
		}
		return WriteJSON(w, status, resp)
	})
}
