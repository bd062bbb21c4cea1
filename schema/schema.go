// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package schema provides constructors for the JSON schemas used in
// operation descriptions.
//
// Every constructor returns a fresh *jsonschema.Schema so callers may
// embed the result in other schemas without aliasing.
//
//	schema.Object(map[string]*jsonschema.Schema{
//		"title": schema.String(schema.MinLength(1)),
//		"year":  schema.Integer(schema.Minimum(0)),
//		"tags":  schema.Array(schema.String(), schema.Default([]string{})),
//	}, schema.Required("title"))
package schema

import (
	"fmt"

	"github.com/swaggest/jsonschema-go"
)

// Option customizes a schema in place.
type Option func(*jsonschema.Schema)

func typed(t jsonschema.SimpleType, opts []Option) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type: &jsonschema.Type{SimpleTypes: &t},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// String returns a string schema.
func String(opts ...Option) *jsonschema.Schema {
	return typed(jsonschema.String, opts)
}

// Integer returns an integer schema.
func Integer(opts ...Option) *jsonschema.Schema {
	return typed(jsonschema.Integer, opts)
}

// Number returns a number schema.
func Number(opts ...Option) *jsonschema.Schema {
	return typed(jsonschema.Number, opts)
}

// Boolean returns a boolean schema.
func Boolean(opts ...Option) *jsonschema.Schema {
	return typed(jsonschema.Boolean, opts)
}

// Binary returns a string schema with the "binary" format, used for
// opaque request bodies like images.
func Binary(opts ...Option) *jsonschema.Schema {
	return typed(jsonschema.String, append([]Option{Format("binary")}, opts...))
}

// Array returns an array schema whose items conform to items.
func Array(items *jsonschema.Schema, opts ...Option) *jsonschema.Schema {
	s := typed(jsonschema.Array, nil)
	if items != nil {
		s.Items = &jsonschema.Items{
			SchemaOrBool: &jsonschema.SchemaOrBool{TypeObject: items},
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Object returns an object schema with the given properties.
// Properties are optional unless named by [Required].
func Object(props map[string]*jsonschema.Schema, opts ...Option) *jsonschema.Schema {
	s := typed(jsonschema.Object, nil)
	s.Properties = make(map[string]jsonschema.SchemaOrBool, len(props))
	for name, prop := range props {
		s.Properties[name] = jsonschema.SchemaOrBool{TypeObject: prop}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StringEnum returns a string schema restricted to the given values.
func StringEnum(values []string, opts ...Option) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	s := String(opts...)
	s.Enum = enum
	return s
}

// Nullable returns a copy of s which also accepts null.
func Nullable(s *jsonschema.Schema) *jsonschema.Schema {
	c := With(s)

	var types []jsonschema.SimpleType
	switch {
	case c.Type == nil:
		return c
	case c.Type.SimpleTypes != nil:
		types = []jsonschema.SimpleType{*c.Type.SimpleTypes}
	default:
		types = append(types, c.Type.SliceOfSimpleTypeValues...)
	}
	for _, t := range types {
		if t == jsonschema.Null {
			return c
		}
	}

	c.Type = &jsonschema.Type{
		SliceOfSimpleTypeValues: append(types, jsonschema.Null),
	}
	return c
}

// With returns a shallow copy of s with opts applied.
func With(s *jsonschema.Schema, opts ...Option) *jsonschema.Schema {
	var c jsonschema.Schema
	if s != nil {
		c = *s
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Of reflects the JSON schema of T, inlining all references.
func Of[T any]() (*jsonschema.Schema, error) {
	var t T
	var reflector jsonschema.Reflector

	s, err := reflector.Reflect(t, jsonschema.InlineRefs)
	if err != nil {
		return nil, fmt.Errorf("schema: failed to reflect %T: %w", t, err)
	}
	return &s, nil
}

// MustOf is like [Of] but panics on failure.
func MustOf[T any]() *jsonschema.Schema {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}
