// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"maps"
	"slices"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
)

// Parameter describes a single operation parameter.
//
// Path parameters are always required. Only path and query parameters
// take part in request validation; header and cookie parameters are
// documented but not validated.
type Parameter struct {
	Name        string
	In          openapi3.ParameterIn
	Description string
	Required    bool
	Deprecated  bool
	Schema      *jsonschema.Schema
	Example     any
}

// MediaType describes the payload for a single content type.
type MediaType struct {
	Schema  *jsonschema.Schema
	Example any
}

// RequestBody describes the accepted request payloads keyed by media type.
type RequestBody struct {
	Description string
	Required    bool
	Content     map[string]MediaType
}

// Response describes a single response, keyed by status code or "default"
// in [Operation.Responses].
type Response struct {
	Description string
	Content     map[string]MediaType
}

// Operation is the declarative description of a route. It is treated as
// immutable once registered.
type Operation struct {
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   map[string]Response
}

// withDefaults fills in the responses every operation document requires.
func (op Operation) withDefaults() Operation {
	if len(op.Responses) == 0 {
		op.Responses = map[string]Response{
			"default": {Description: "Unknown"},
		}
	}
	return op
}

// OpenAPI converts the description into its OpenAPI 3.0 form.
func (op Operation) OpenAPI() openapi3.Operation {
	var o openapi3.Operation
	if op.OperationID != "" {
		o.ID = ptr.Ref(op.OperationID)
	}
	if op.Summary != "" {
		o.Summary = ptr.Ref(op.Summary)
	}
	if op.Description != "" {
		o.Description = ptr.Ref(op.Description)
	}
	if op.Deprecated {
		o.Deprecated = ptr.Ref(true)
	}
	o.Tags = op.Tags

	for _, p := range op.Parameters {
		o.Parameters = append(o.Parameters, openapi3.ParameterOrRef{
			Parameter: p.openAPI(),
		})
	}

	if op.RequestBody != nil {
		o.RequestBody = &openapi3.RequestBodyOrRef{
			RequestBody: &openapi3.RequestBody{
				Description: optional(op.RequestBody.Description),
				Required:    ptr.Ref(op.RequestBody.Required),
				Content:     contentOpenAPI(op.RequestBody.Content),
			},
		}
	}

	o.Responses.MapOfResponseOrRefValues = make(map[string]openapi3.ResponseOrRef, len(op.Responses))
	for _, code := range slices.Sorted(maps.Keys(op.Responses)) {
		resp := op.Responses[code]
		r := openapi3.ResponseOrRef{
			Response: &openapi3.Response{
				Description: resp.Description,
				Content:     contentOpenAPI(resp.Content),
			},
		}
		if code == "default" {
			o.Responses.Default = &r
			continue
		}
		o.Responses.MapOfResponseOrRefValues[code] = r
	}
	return o
}

func (p Parameter) openAPI() *openapi3.Parameter {
	param := &openapi3.Parameter{
		Name:        p.Name,
		In:          p.In,
		Description: optional(p.Description),
		Required:    ptr.Ref(p.Required || p.In == openapi3.ParameterInPath),
		Schema:      schemaOrRef(p.Schema),
		Example:     exampleOf(p.Example),
	}
	if p.Deprecated {
		param.Deprecated = ptr.Ref(true)
	}
	return param
}

func contentOpenAPI(content map[string]MediaType) map[string]openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	out := make(map[string]openapi3.MediaType, len(content))
	for mt, c := range content {
		out[mt] = openapi3.MediaType{
			Schema:  schemaOrRef(c.Schema),
			Example: exampleOf(c.Example),
		}
	}
	return out
}

func schemaOrRef(s *jsonschema.Schema) *openapi3.SchemaOrRef {
	if s == nil {
		return nil
	}
	var sor openapi3.SchemaOrRef
	sor.FromJSONSchema(s.ToSchemaOrBool())
	return &sor
}

func exampleOf(v any) *any {
	if v == nil {
		return nil
	}
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
