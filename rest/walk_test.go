// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/openapi-go/openapi3"
)

func TestWalk(t *testing.T) {
	t.Run("will document described handlers", func(t *testing.T) {
		t.Run("if they are registered on a plain chi router", func(t *testing.T) {
			books := chi.NewRouter()
			books.Method(http.MethodGet, "/{id:[0-9]+}", Describe(Operation{OperationID: "getBook"}, okHandler()))
			books.Method(http.MethodPost, "/", Describe(Operation{OperationID: "createBook"}, okHandler()))

			root := chi.NewRouter()
			root.Method(http.MethodGet, "/ping", Describe(Operation{OperationID: "ping"}, okHandler()))
			root.Mount("/books", books)

			doc, err := Walk(openapi3.Spec{}, root)
			require.NoError(t, err)

			paths := doc.Paths.MapOfPathItemValues
			require.Contains(t, paths, "/ping")
			require.Contains(t, paths, "/books/{id}")
			require.Contains(t, paths, "/books/")

			op := paths["/books/{id}"].MapOfOperationValues["get"]
			require.NotNil(t, op.ID)
			assert.Equal(t, "getBook", *op.ID)
		})

		t.Run("if they are registered on a Router", func(t *testing.T) {
			root := newRoot()
			sub := NewRouter()
			sub.Get("/posts/:id/:slug", Operation{OperationID: "getPost"}, okHandler())
			root.Mount("/api", sub)

			doc, err := Walk(openapi3.Spec{}, root.Chi())
			require.NoError(t, err)

			assert.Equal(t, Document(openapi3.Spec{}, root.Routes()), doc)
		})
	})

	t.Run("will skip handlers without a description", func(t *testing.T) {
		root := chi.NewRouter()
		root.Get("/plain", func(w http.ResponseWriter, r *http.Request) {})

		doc, err := Walk(openapi3.Spec{}, root)
		require.NoError(t, err)

		assert.Empty(t, doc.Paths.MapOfPathItemValues)
	})

	t.Run("will warn once", func(t *testing.T) {
		t.Run("if an opaque handler is mounted", func(t *testing.T) {
			log, buf := captureLogger()

			root := chi.NewRouter()
			root.Mount("/legacy", http.NotFoundHandler())
			root.Method(http.MethodGet, "/ping", Describe(Operation{}, okHandler()))

			doc, err := Walk(openapi3.Spec{}, root, WalkLogger(log))
			require.NoError(t, err)

			assert.Len(t, doc.Paths.MapOfPathItemValues, 1)

			lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
			require.Len(t, lines, 1)

			var record map[string]any
			require.NoError(t, json.Unmarshal(lines[0], &record))
			assert.Equal(t, "WARN", record["level"])
			assert.Equal(t, "/legacy/*", record["path"])
		})
	})
}

func TestWalkHandler(t *testing.T) {
	t.Run("will serve the walked document", func(t *testing.T) {
		root := chi.NewRouter()
		root.Method(http.MethodGet, "/ping", Describe(Operation{OperationID: "ping"}, okHandler()))

		h := WalkHandler(openapi3.Spec{Info: openapi3.Info{Title: "walked", Version: "v1"}}, root)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, OpenAPIVersion, doc["openapi"])
		assert.Contains(t, doc["paths"], "/ping")
	})
}

func TestDescribe(t *testing.T) {
	t.Run("will expose the operation", func(t *testing.T) {
		h := Describe(Operation{OperationID: "x"}, okHandler())

		op, ok := DescriptionOf(h)
		require.True(t, ok)
		assert.Equal(t, "x", op.OperationID)
		assert.Contains(t, op.Responses, "default")
	})

	t.Run("will not find an operation", func(t *testing.T) {
		t.Run("if the handler was not described", func(t *testing.T) {
			_, ok := DescriptionOf(http.NotFoundHandler())
			assert.False(t, ok)
		})
	})

	t.Run("will validate requests", func(t *testing.T) {
		root := chi.NewRouter()
		root.Method(http.MethodGet, "/search", Describe(searchOperation(), okHandler(), DescribeWith(NewValidator())))

		w := httptest.NewRecorder()
		root.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		root.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=go", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("will use the given error handler", func(t *testing.T) {
		eh := ErrorHandlerFunc(func(_ context.Context, w http.ResponseWriter, _ error) {
			w.WriteHeader(http.StatusTeapot)
		})
		h := Describe(searchOperation(), okHandler(), DescribeErrorHandler(eh))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}
