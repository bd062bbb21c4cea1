// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/swaggest/jsonschema-go"
)

// normalize prepares v for validation against s. It fills in defaults of
// absent object properties, drops properties an object schema does not
// list, and coerces scalars towards the declared type: strings to numbers,
// integers, booleans and null, numbers and booleans to strings, a lone
// scalar into a one element array and a one element array into its scalar.
//
// Maps are modified in place. The returned value must replace v since
// coercion may change its type.
func normalize(s *jsonschema.Schema, v any) any {
	if s == nil {
		return v
	}

	types := schemaTypes(s)
	v = coerce(types, v)

	switch x := v.(type) {
	case map[string]any:
		normalizeObject(s, x)
	case []any:
		if s.Items == nil || s.Items.SchemaOrBool == nil || s.Items.SchemaOrBool.TypeObject == nil {
			return x
		}
		items := s.Items.SchemaOrBool.TypeObject
		for i := range x {
			x[i] = normalize(items, x[i])
		}
	}
	return v
}

func normalizeObject(s *jsonschema.Schema, obj map[string]any) {
	if len(s.Properties) == 0 {
		return
	}

	if len(s.PatternProperties) == 0 && !allowsAdditional(s) {
		for k := range obj {
			if _, ok := s.Properties[k]; !ok {
				delete(obj, k)
			}
		}
	}

	for name, prop := range s.Properties {
		ps := prop.TypeObject
		if ps == nil {
			continue
		}
		pv, ok := obj[name]
		if !ok {
			if ps.Default == nil {
				continue
			}
			obj[name] = jsonValue(*ps.Default)
			continue
		}
		obj[name] = normalize(ps, pv)
	}
}

// allowsAdditional reports whether the schema explicitly describes the
// shape of additional properties, in which case they are kept.
func allowsAdditional(s *jsonschema.Schema) bool {
	ap := s.AdditionalProperties
	if ap == nil {
		return false
	}
	return ap.TypeObject != nil
}

func schemaTypes(s *jsonschema.Schema) []jsonschema.SimpleType {
	if s.Type == nil {
		return nil
	}
	if s.Type.SimpleTypes != nil {
		return []jsonschema.SimpleType{*s.Type.SimpleTypes}
	}
	return s.Type.SliceOfSimpleTypeValues
}

func coerce(types []jsonschema.SimpleType, v any) any {
	if len(types) == 0 || matchesType(types, v) {
		return v
	}

	if slices.Contains(types, jsonschema.Array) {
		if _, isArr := v.([]any); !isArr {
			return []any{v}
		}
	}

	if arr, isArr := v.([]any); isArr && len(arr) == 1 {
		return coerce(types, arr[0])
	}

	for _, t := range types {
		if c, ok := coerceScalar(t, v); ok {
			return c
		}
	}
	return v
}

// Only strings in JSON number syntax become numbers. Go literals like NaN,
// 1_000 or 0x1p4 stay strings and fail type validation.
var (
	jsonNumber  = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
	jsonInteger = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
)

func coerceScalar(t jsonschema.SimpleType, v any) (any, bool) {
	switch t {
	case jsonschema.Number:
		switch x := v.(type) {
		case string:
			if jsonNumber.MatchString(x) {
				return json.Number(x), true
			}
		case bool:
			if x {
				return json.Number("1"), true
			}
			return json.Number("0"), true
		}
	case jsonschema.Integer:
		switch x := v.(type) {
		case string:
			if jsonInteger.MatchString(x) {
				return json.Number(x), true
			}
		case bool:
			if x {
				return json.Number("1"), true
			}
			return json.Number("0"), true
		}
	case jsonschema.Boolean:
		switch x := v.(type) {
		case string:
			switch x {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		case json.Number:
			switch x.String() {
			case "1":
				return true, true
			case "0":
				return false, true
			}
		}
	case jsonschema.String:
		switch x := v.(type) {
		case json.Number:
			return x.String(), true
		case bool:
			return strconv.FormatBool(x), true
		case nil:
			return "", true
		}
	case jsonschema.Null:
		switch x := v.(type) {
		case string:
			if x == "" {
				return nil, true
			}
		case json.Number:
			if x.String() == "0" {
				return nil, true
			}
		case bool:
			if !x {
				return nil, true
			}
		}
	}
	return nil, false
}

func matchesType(types []jsonschema.SimpleType, v any) bool {
	for _, t := range types {
		switch t {
		case jsonschema.Object:
			if _, ok := v.(map[string]any); ok {
				return true
			}
		case jsonschema.Array:
			if _, ok := v.([]any); ok {
				return true
			}
		case jsonschema.String:
			if _, ok := v.(string); ok {
				return true
			}
		case jsonschema.Boolean:
			if _, ok := v.(bool); ok {
				return true
			}
		case jsonschema.Null:
			if v == nil {
				return true
			}
		case jsonschema.Number:
			if _, ok := v.(json.Number); ok {
				return true
			}
		case jsonschema.Integer:
			if n, ok := v.(json.Number); ok && !strings.ContainsAny(n.String(), ".eE") {
				return true
			}
		}
	}
	return false
}

// jsonValue deep copies v into the representation produced by decoding JSON
// with numbers kept as [json.Number].
func jsonValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}
