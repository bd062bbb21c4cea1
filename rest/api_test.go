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

	"github.com/z5labs/schemaroute/health"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDocument(t *testing.T, h http.Handler) map[string]any {
	t.Helper()

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/openapi.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return doc
}

func TestNewApi(t *testing.T) {
	t.Run("will serve the document at /openapi.json", func(t *testing.T) {
		api := NewApi("My API", "v2.3.1", Description("Books and more"), Server("https://api.example.com"))

		doc := getDocument(t, api)

		assert.Equal(t, OpenAPIVersion, doc["openapi"])

		info := doc["info"].(map[string]any)
		assert.Equal(t, "My API", info["title"])
		assert.Equal(t, "v2.3.1", info["version"])
		assert.Equal(t, "Books and more", info["description"])

		servers := doc["servers"].([]any)
		require.Len(t, servers, 1)
		assert.Equal(t, "https://api.example.com", servers[0].(map[string]any)["url"])
	})

	t.Run("will document routes of mounted routers", func(t *testing.T) {
		api := NewApi("Test", "v1")

		books := NewRouter()
		books.Get("/books/:id", Operation{OperationID: "getBook"}, okHandler())
		books.Delete("/books/:id", Operation{OperationID: "deleteBook"}, okHandler())
		api.Mount("/api/v1", books)

		doc := getDocument(t, api)

		paths := doc["paths"].(map[string]any)
		require.Contains(t, paths, "/api/v1/books/{id}")

		item := paths["/api/v1/books/{id}"].(map[string]any)
		assert.Contains(t, item, "get")
		assert.Contains(t, item, "delete")
		assert.NotContains(t, paths, "/openapi.json")
		assert.NotContains(t, paths, "/health/liveness")
	})

	t.Run("will validate requests to mounted routers", func(t *testing.T) {
		api := NewApi("Test", "v1")

		books := NewRouter()
		books.Get("/search", searchOperation(), okHandler())
		api.Mount("/books", books)

		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/search", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/search?q=dune", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("will return a fresh document", func(t *testing.T) {
		api := NewApi("Test", "v1")
		api.Get("/a", Operation{}, okHandler())

		first := api.Document()
		api.Get("/b", Operation{}, okHandler())
		second := api.Document()

		assert.Len(t, first.Paths.MapOfPathItemValues, 1)
		assert.Len(t, second.Paths.MapOfPathItemValues, 2)
	})

	t.Run("will use the configured error handler", func(t *testing.T) {
		api := NewApi("Test", "v1", OnError(ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
			w.WriteHeader(http.StatusTeapot)
		})))
		api.Get("/fail", Operation{}, HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
			return errors.New("boom")
		}))

		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("will use custom not found and method not allowed handlers", func(t *testing.T) {
		api := NewApi(
			"Test",
			"v1",
			NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})),
			MethodNotAllowed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
			})),
		)
		api.Get("/only-get", Operation{}, okHandler())

		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)

		w = httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/only-get", nil))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestApi_Health(t *testing.T) {
	t.Run("will report healthy by default", func(t *testing.T) {
		api := NewApi("Test", "v1")

		for _, path := range []string{"/health/liveness", "/health/readiness"} {
			w := httptest.NewRecorder()
			api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("will report service unavailable", func(t *testing.T) {
		t.Run("if the readiness monitor is unhealthy", func(t *testing.T) {
			var ready health.Binary
			api := NewApi("Test", "v1", Readiness(&ready))

			w := httptest.NewRecorder()
			api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)

			ready.MarkHealthy()

			w = httptest.NewRecorder()
			api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})

		t.Run("if the liveness monitor fails", func(t *testing.T) {
			api := NewApi("Test", "v1", Liveness(health.MonitorFunc(func(ctx context.Context) (bool, error) {
				return true, errors.New("database unreachable")
			})))

			w := httptest.NewRecorder()
			api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		})
	})
}
