// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"fmt"
)

// Input holds the validated and normalized request values.
type Input struct {
	Path  map[string]any
	Query map[string]any

	// Body is the decoded body. It is only set when the route declares
	// a request body.
	Body any

	// RawBody is the body exactly as received.
	RawBody []byte

	// MediaType is the media type the body was matched on, without
	// parameters.
	MediaType string
}

type inputCtxKey struct{}

func withInput(ctx context.Context, in *Input) context.Context {
	return context.WithValue(ctx, inputCtxKey{}, in)
}

// InputFrom returns the validated request values stored on ctx.
func InputFrom(ctx context.Context) (*Input, bool) {
	in, ok := ctx.Value(inputCtxKey{}).(*Input)
	return in, ok
}

// PathParams returns the validated path parameters.
func PathParams(ctx context.Context) map[string]any {
	in, ok := InputFrom(ctx)
	if !ok {
		return nil
	}
	return in.Path
}

// QueryParams returns the validated query parameters.
func QueryParams(ctx context.Context) map[string]any {
	in, ok := InputFrom(ctx)
	if !ok {
		return nil
	}
	return in.Query
}

// Body returns the validated request body.
func Body(ctx context.Context) any {
	in, ok := InputFrom(ctx)
	if !ok {
		return nil
	}
	return in.Body
}

// RawBody returns the request body as received.
func RawBody(ctx context.Context) []byte {
	in, ok := InputFrom(ctx)
	if !ok {
		return nil
	}
	return in.RawBody
}

// DecodePath decodes the validated path parameters into a T.
func DecodePath[T any](ctx context.Context) (T, error) {
	return decodeValue[T](PathParams(ctx))
}

// DecodeQuery decodes the validated query parameters into a T.
func DecodeQuery[T any](ctx context.Context) (T, error) {
	return decodeValue[T](QueryParams(ctx))
}

// DecodeBody decodes the validated body into a T.
func DecodeBody[T any](ctx context.Context) (T, error) {
	return decodeValue[T](Body(ctx))
}

func decodeValue[T any](v any) (T, error) {
	var t T
	b, err := json.Marshal(v)
	if err != nil {
		return t, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	err = json.Unmarshal(b, &t)
	if err != nil {
		return t, fmt.Errorf("failed to unmarshal into %T: %w", t, err)
	}
	return t, nil
}
