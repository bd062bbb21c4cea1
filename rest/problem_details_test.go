// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetail_Error(t *testing.T) {
	t.Run("will return the detail", func(t *testing.T) {
		t.Run("if it is present", func(t *testing.T) {
			pd := ProblemDetail{Title: "Error Title", Detail: "Specific error details"}

			require.Equal(t, "Specific error details", pd.Error())
		})
	})

	t.Run("will return the title", func(t *testing.T) {
		t.Run("if the detail is empty", func(t *testing.T) {
			pd := ProblemDetail{Title: "Error Title"}

			require.Equal(t, "Error Title", pd.Error())
		})
	})
}

func TestProblemDetailsErrorHandler_OnError(t *testing.T) {
	log, _ := captureLogger()

	t.Run("will encode a validation error with its extension fields", func(t *testing.T) {
		h := NewProblemDetailsErrorHandler(WithProblemLogger(log))

		verr := newValidationError(ErrorDetails{
			Query: []Violation{{
				Keyword: "required",
				Message: "missing property 'q'",
				Params:  map[string]any{"missingProperty": "q"},
			}},
		})

		w := httptest.NewRecorder()
		h.OnError(context.Background(), w, verr)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Validation failed", body["title"])
		assert.Equal(t, CodeValidation, body["code"])
		assert.Equal(t, float64(http.StatusBadRequest), body["status"])

		details := body["details"].(map[string]any)
		assert.Len(t, details["query"], 1)
	})

	t.Run("will encode an unsupported media type error", func(t *testing.T) {
		h := NewProblemDetailsErrorHandler(WithProblemLogger(log))

		w := httptest.NewRecorder()
		h.OnError(context.Background(), w, newUnsupportedMediaTypeError("application/xml"))

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "application/xml", body["contentType"])
		assert.Equal(t, CodeUnsupportedMediaType, body["code"])
	})

	t.Run("will respond with a malformed body problem", func(t *testing.T) {
		t.Run("if the body could not be decoded", func(t *testing.T) {
			h := NewProblemDetailsErrorHandler(
				WithProblemLogger(log),
				WithDefaultType("https://example.com/problems/"),
			)

			err := BadRequestError{
				Cause: MalformedBodyError{MediaType: "application/json", Cause: errors.New("unexpected EOF")},
			}

			w := httptest.NewRecorder()
			h.OnError(context.Background(), w, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var pd ProblemDetail
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pd))
			assert.Equal(t, "https://example.com/problems/malformed-body", pd.Type)
			assert.Equal(t, "Malformed Body", pd.Title)
		})
	})

	t.Run("will hide internal errors", func(t *testing.T) {
		h := NewProblemDetailsErrorHandler(WithProblemLogger(log))

		w := httptest.NewRecorder()
		h.OnError(context.Background(), w, errors.New("database password is hunter2"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")

		var pd ProblemDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pd))
		assert.Equal(t, "about:blank", pd.Type)
		assert.Equal(t, "An internal server error occurred.", pd.Detail)
	})

	t.Run("will be usable as a router error handler", func(t *testing.T) {
		r := newRoot(OnError(NewProblemDetailsErrorHandler(WithProblemLogger(log))))
		r.Get("/search", searchOperation(), okHandler())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	})
}

func TestValidationError_Error(t *testing.T) {
	t.Run("will count violations across partitions", func(t *testing.T) {
		err := newValidationError(ErrorDetails{
			Path:  []Violation{{}},
			Query: []Violation{{}, {}},
		})

		assert.Equal(t, "validation failed with 3 violation(s)", err.Error())
	})
}
