// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"testing"

	"github.com/z5labs/schemaroute/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/openapi-go/openapi3"
)

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		In  string
		Out string
	}{
		{In: "/posts/:id/:slug", Out: "/posts/{id}/{slug}"},
		{In: "/books", Out: "/books"},
		{In: "/books/{id}", Out: "/books/{id}"},
		{In: "/a/:b_c/d", Out: "/a/{b_c}/d"},
		{In: "", Out: ""},
	}

	for _, testCase := range testCases {
		t.Run("will rewrite "+testCase.In, func(t *testing.T) {
			assert.Equal(t, testCase.Out, NormalizePath(testCase.In))
		})
	}
}

func TestDocument(t *testing.T) {
	t.Run("will key paths with brace style parameters", func(t *testing.T) {
		op := Operation{
			OperationID: "getPost",
			Parameters: []Parameter{
				{Name: "id", In: openapi3.ParameterInPath, Required: true, Schema: schema.Integer()},
				{Name: "slug", In: openapi3.ParameterInPath, Required: true, Schema: schema.String()},
			},
			Responses: map[string]Response{
				"200": {Description: "The post"},
			},
		}

		r := newRoot()
		r.Get("/posts/:id/:slug", op, okHandler())

		doc := Document(openapi3.Spec{Info: openapi3.Info{Title: "t", Version: "v"}}, r.Routes())

		assert.Equal(t, OpenAPIVersion, doc.Openapi)
		require.Contains(t, doc.Paths.MapOfPathItemValues, "/posts/{id}/{slug}")

		item := doc.Paths.MapOfPathItemValues["/posts/{id}/{slug}"]
		require.Contains(t, item.MapOfOperationValues, "get")
		assert.Equal(t, op.OpenAPI(), item.MapOfOperationValues["get"])
	})

	t.Run("will merge methods of the same path", func(t *testing.T) {
		routes := []Route{
			{Method: MethodGet, Path: "/books/:id", Operation: Operation{OperationID: "get"}},
			{Method: MethodPut, Path: "/books/:id", Operation: Operation{OperationID: "put"}},
			{Method: MethodDelete, Path: "/books/{id}", Operation: Operation{OperationID: "delete"}},
		}

		doc := Document(openapi3.Spec{}, routes)

		require.Len(t, doc.Paths.MapOfPathItemValues, 1)
		item := doc.Paths.MapOfPathItemValues["/books/{id}"]
		assert.Len(t, item.MapOfOperationValues, 3)
		assert.Contains(t, item.MapOfOperationValues, "put")
	})

	t.Run("will use the last duplicate route", func(t *testing.T) {
		routes := []Route{
			{Method: MethodGet, Path: "/dup", Operation: Operation{OperationID: "first"}},
			{Method: MethodGet, Path: "/dup", Operation: Operation{OperationID: "second"}},
		}

		doc := Document(openapi3.Spec{}, routes)

		op := doc.Paths.MapOfPathItemValues["/dup"].MapOfOperationValues["get"]
		require.NotNil(t, op.ID)
		assert.Equal(t, "second", *op.ID)
	})

	t.Run("will document default responses", func(t *testing.T) {
		doc := Document(openapi3.Spec{}, []Route{{Method: MethodGet, Path: "/x"}})

		op := doc.Paths.MapOfPathItemValues["/x"].MapOfOperationValues["get"]
		require.NotNil(t, op.Responses.Default)
		require.NotNil(t, op.Responses.Default.Response)
		assert.Equal(t, "Unknown", op.Responses.Default.Response.Description)
	})

	t.Run("will not modify the base document", func(t *testing.T) {
		base := openapi3.Spec{Openapi: "3.0.0"}

		doc := Document(base, []Route{{Method: MethodGet, Path: "/x"}})

		assert.Empty(t, base.Paths.MapOfPathItemValues)
		assert.Equal(t, "3.0.0", doc.Openapi)
	})

	t.Run("will render required path parameters", func(t *testing.T) {
		op := Operation{
			Parameters: []Parameter{
				{Name: "id", In: openapi3.ParameterInPath, Schema: schema.String()},
			},
		}

		doc := Document(openapi3.Spec{}, []Route{{Method: MethodGet, Path: "/books/:id", Operation: op}})

		b, err := json.Marshal(doc)
		require.NoError(t, err)

		var raw struct {
			Paths map[string]map[string]struct {
				Parameters []struct {
					Name     string `json:"name"`
					Required bool   `json:"required"`
				} `json:"parameters"`
			} `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(b, &raw))

		params := raw.Paths["/books/{id}"]["get"].Parameters
		require.Len(t, params, 1)
		assert.True(t, params[0].Required)
	})
}
