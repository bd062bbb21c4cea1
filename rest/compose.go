// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"log/slog"

	"github.com/z5labs/schemaroute"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

const jsonMediaType = "application/json"

// RequestSchema composes the path parameters, query parameters and JSON body
// of op into one object schema with the properties "params", "query" and "body".
//
// Only the application/json request body takes part. Other media types and
// optional path parameters are reported as warnings.
func RequestSchema(op Operation) *jsonschema.Schema {
	return requestSchema(schemaroute.Logger("rest"), op)
}

func requestSchema(log *slog.Logger, op Operation) *jsonschema.Schema {
	params, query := parameterSchemas(log, op.Parameters)

	body := objectSchema()
	required := []string{"params", "query"}
	if op.RequestBody != nil {
		for mt, content := range op.RequestBody.Content {
			if mt != jsonMediaType {
				log.Warn(
					"ignoring non json media type in composite request schema",
					slog.String("media_type", mt),
				)
				continue
			}
			if content.Schema != nil {
				body = content.Schema
			}
		}
		if op.RequestBody.Required {
			required = append(required, "body")
		}
	}

	s := objectSchema()
	s.Required = required
	s.Properties = map[string]jsonschema.SchemaOrBool{
		"params": params.ToSchemaOrBool(),
		"query":  query.ToSchemaOrBool(),
		"body":   body.ToSchemaOrBool(),
	}
	return s
}

// parameterSchemas builds one object schema for the path parameters and
// one for the query parameters. Other locations are ignored.
func parameterSchemas(log *slog.Logger, params []Parameter) (path, query *jsonschema.Schema) {
	path = objectSchema()
	query = objectSchema()

	for _, p := range params {
		var target *jsonschema.Schema
		switch p.In {
		case openapi3.ParameterInPath:
			target = path
			if !p.Required && log != nil {
				log.Warn(
					"path parameter must be required",
					slog.String("param", p.Name),
				)
			}
		case openapi3.ParameterInQuery:
			target = query
		default:
			continue
		}

		ps := p.Schema
		if ps == nil {
			ps = &jsonschema.Schema{}
		}
		target.Properties[p.Name] = ps.ToSchemaOrBool()
		if p.Required || p.In == openapi3.ParameterInPath {
			target.Required = append(target.Required, p.Name)
		}
	}
	return path, query
}

func objectSchema() *jsonschema.Schema {
	t := jsonschema.Object
	return &jsonschema.Schema{
		Type:       &jsonschema.Type{SimpleTypes: &t},
		Properties: map[string]jsonschema.SchemaOrBool{},
	}
}
