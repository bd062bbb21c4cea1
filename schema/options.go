// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"slices"

	"github.com/swaggest/jsonschema-go"
)

// Default sets the value filled in when the described value is absent.
func Default(v any) Option {
	return func(s *jsonschema.Schema) {
		s.Default = &v
	}
}

// Description sets the human readable description.
func Description(desc string) Option {
	return func(s *jsonschema.Schema) {
		s.Description = &desc
	}
}

// Example appends an example value.
func Example(v any) Option {
	return func(s *jsonschema.Schema) {
		s.Examples = append(s.Examples, v)
	}
}

// Format sets the string format, e.g. "uuid" or "date-time".
func Format(f string) Option {
	return func(s *jsonschema.Schema) {
		s.Format = &f
	}
}

// Pattern sets the regular expression strings must match.
func Pattern(p string) Option {
	return func(s *jsonschema.Schema) {
		s.Pattern = &p
	}
}

// MinLength sets the minimum string length.
func MinLength(n int64) Option {
	return func(s *jsonschema.Schema) {
		s.MinLength = n
	}
}

// MaxLength sets the maximum string length.
func MaxLength(n int64) Option {
	return func(s *jsonschema.Schema) {
		s.MaxLength = &n
	}
}

// Minimum sets the inclusive lower bound of a number.
func Minimum(f float64) Option {
	return func(s *jsonschema.Schema) {
		s.Minimum = &f
	}
}

// Maximum sets the inclusive upper bound of a number.
func Maximum(f float64) Option {
	return func(s *jsonschema.Schema) {
		s.Maximum = &f
	}
}

// MaxItems sets the maximum array length.
func MaxItems(n int64) Option {
	return func(s *jsonschema.Schema) {
		s.MaxItems = &n
	}
}

// Required marks object properties as required. The names are added to a
// copy of the existing list, so schemas derived with [With] never share it.
func Required(names ...string) Option {
	return func(s *jsonschema.Schema) {
		s.Required = append(slices.Clone(s.Required), names...)
	}
}

// Closed forbids properties not listed in the object schema.
func Closed() Option {
	return func(s *jsonschema.Schema) {
		f := false
		s.AdditionalProperties = &jsonschema.SchemaOrBool{TypeBoolean: &f}
	}
}
