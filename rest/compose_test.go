// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/z5labs/schemaroute/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestRequestSchema(t *testing.T) {
	t.Run("will compose params, query and body", func(t *testing.T) {
		op := Operation{
			Parameters: []Parameter{
				{Name: "id", In: openapi3.ParameterInPath, Required: true, Schema: schema.Integer()},
				{Name: "q", In: openapi3.ParameterInQuery, Required: true, Schema: schema.String()},
				{Name: "limit", In: openapi3.ParameterInQuery, Schema: schema.Integer()},
				{Name: "X-Trace", In: openapi3.ParameterInHeader, Schema: schema.String()},
			},
			RequestBody: &RequestBody{
				Required: true,
				Content: map[string]MediaType{
					"application/json": {
						Schema: schema.Object(map[string]*jsonschema.Schema{
							"title": schema.String(),
						}),
					},
				},
			},
		}

		b, err := json.Marshal(RequestSchema(op))
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"type": "object",
			"required": ["params", "query", "body"],
			"properties": {
				"params": {
					"type": "object",
					"required": ["id"],
					"properties": {"id": {"type": "integer"}}
				},
				"query": {
					"type": "object",
					"required": ["q"],
					"properties": {"q": {"type": "string"}, "limit": {"type": "integer"}}
				},
				"body": {
					"type": "object",
					"properties": {"title": {"type": "string"}}
				}
			}
		}`, string(b))
	})

	t.Run("will use an empty object body", func(t *testing.T) {
		t.Run("if the operation has no request body", func(t *testing.T) {
			s := RequestSchema(Operation{})

			require.Contains(t, s.Properties, "body")
			body := s.Properties["body"].TypeObject
			require.NotNil(t, body)
			assert.Empty(t, body.Properties)
			assert.Equal(t, []string{"params", "query"}, s.Required)
		})
	})

	t.Run("will warn", func(t *testing.T) {
		t.Run("if a path parameter is not marked required", func(t *testing.T) {
			log, buf := captureLogger()

			s := requestSchema(log, Operation{
				Parameters: []Parameter{
					{Name: "id", In: openapi3.ParameterInPath, Schema: schema.String()},
				},
			})

			params := s.Properties["params"].TypeObject
			require.NotNil(t, params)
			assert.Equal(t, []string{"id"}, params.Required)

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "WARN", record["level"])
			assert.Equal(t, "id", record["param"])
		})

		t.Run("if a non json media type is declared", func(t *testing.T) {
			log, buf := captureLogger()

			s := requestSchema(log, Operation{
				RequestBody: &RequestBody{
					Content: map[string]MediaType{
						"application/xml": {Schema: schema.String()},
					},
				},
			})

			body := s.Properties["body"].TypeObject
			require.NotNil(t, body)
			assert.Empty(t, body.Properties)

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "WARN", record["level"])
			assert.Equal(t, "application/xml", record["media_type"])
		})
	})
}
