// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const (
	formMediaType      = "application/x-www-form-urlencoded"
	multipartMediaType = "multipart/form-data"

	multipartMaxMemory = 32 << 20
)

// mediaTypeOf returns the lowercase media type of a Content-Type header
// value without its parameters.
func mediaTypeOf(contentType string) (string, map[string]string) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		return mt, params
	}
	mt, _, _ = strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt)), nil
}

func isJSONMediaType(mt string) bool {
	return mt == jsonMediaType || strings.HasSuffix(mt, "+json")
}

// readBody consumes the request body and replaces it so handlers can
// read it again.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, newRequestTooLargeError(tooLarge.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}

// decodeBody converts a raw body into the value its schema is checked
// against. An empty body is an empty object regardless of media type.
func decodeBody(mt string, params map[string]string, raw []byte) (any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	switch {
	case isJSONMediaType(mt):
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var v any
		err := dec.Decode(&v)
		if err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, errors.New("unexpected data after top-level value")
		}
		return v, nil
	case mt == formMediaType:
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, err
		}
		return valuesToMap(values), nil
	case mt == multipartMediaType:
		boundary := params["boundary"]
		if boundary == "" {
			return nil, errors.New("missing multipart boundary")
		}
		form, err := multipart.NewReader(bytes.NewReader(raw), boundary).ReadForm(multipartMaxMemory)
		if err != nil {
			return nil, fmt.Errorf("failed to read multipart form: %w", err)
		}
		defer form.RemoveAll()
		return valuesToMap(form.Value), nil
	default:
		return string(raw), nil
	}
}

// valuesToMap flattens single valued keys to strings and keeps
// repeated keys as arrays.
func valuesToMap(values map[string][]string) map[string]any {
	m := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			m[k] = vs[0]
			continue
		}
		arr := make([]any, len(vs))
		for i, v := range vs {
			arr[i] = v
		}
		m[k] = arr
	}
	return m
}

func isEmptyObject(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}
