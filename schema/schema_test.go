// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/jsonschema-go"
)

func marshal(t *testing.T, s *jsonschema.Schema) string {
	t.Helper()

	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestObject(t *testing.T) {
	t.Run("will only require the named properties", func(t *testing.T) {
		s := Object(map[string]*jsonschema.Schema{
			"title": String(MinLength(1)),
			"year":  Integer(Minimum(0)),
		}, Required("title"))

		assert.JSONEq(t, `{
			"type": "object",
			"required": ["title"],
			"properties": {
				"title": {"type": "string", "minLength": 1},
				"year": {"type": "integer", "minimum": 0}
			}
		}`, marshal(t, s))
	})

	t.Run("will forbid additional properties", func(t *testing.T) {
		t.Run("if it is closed", func(t *testing.T) {
			s := Object(map[string]*jsonschema.Schema{"a": String()}, Closed())

			assert.JSONEq(t, `{
				"type": "object",
				"properties": {"a": {"type": "string"}},
				"additionalProperties": false
			}`, marshal(t, s))
		})
	})
}

func TestArray(t *testing.T) {
	t.Run("will describe its items", func(t *testing.T) {
		s := Array(String(), Default([]string{}))

		assert.JSONEq(t, `{"type": "array", "items": {"type": "string"}, "default": []}`, marshal(t, s))
	})
}

func TestStringEnum(t *testing.T) {
	t.Run("will restrict the string to the values", func(t *testing.T) {
		s := StringEnum([]string{"asc", "desc"}, Default("asc"))

		assert.JSONEq(t, `{"type": "string", "enum": ["asc", "desc"], "default": "asc"}`, marshal(t, s))
	})
}

func TestNullable(t *testing.T) {
	t.Run("will add null to the accepted types", func(t *testing.T) {
		s := Nullable(String(Format("date")))

		assert.JSONEq(t, `{"type": ["string", "null"], "format": "date"}`, marshal(t, s))
	})

	t.Run("will not modify the original schema", func(t *testing.T) {
		orig := Integer()
		Nullable(orig)

		assert.JSONEq(t, `{"type": "integer"}`, marshal(t, orig))
	})

	t.Run("will not add null twice", func(t *testing.T) {
		s := Nullable(Nullable(Boolean()))

		assert.JSONEq(t, `{"type": ["boolean", "null"]}`, marshal(t, s))
	})
}

func TestWith(t *testing.T) {
	t.Run("will copy the schema before applying options", func(t *testing.T) {
		base := String()
		desc := With(base, Description("the book title"))

		assert.JSONEq(t, `{"type": "string"}`, marshal(t, base))
		assert.JSONEq(t, `{"type": "string", "description": "the book title"}`, marshal(t, desc))
	})

	t.Run("will not share required properties between derived schemas", func(t *testing.T) {
		base := Object(map[string]*jsonschema.Schema{
			"title":  String(),
			"author": String(),
			"pages":  Integer(),
		})
		base.Required = make([]string, 0, 4)

		withTitle := With(base, Required("title"))
		withAuthor := With(base, Required("author"))

		assert.Equal(t, []string{"title"}, withTitle.Required)
		assert.Equal(t, []string{"author"}, withAuthor.Required)
		assert.Empty(t, base.Required)
	})
}

func TestOf(t *testing.T) {
	type book struct {
		Title string `json:"title"`
		Pages int    `json:"pages"`
	}

	t.Run("will reflect the struct fields", func(t *testing.T) {
		s, err := Of[book]()
		require.NoError(t, err)

		require.NotNil(t, s.Type)
		require.NotNil(t, s.Type.SimpleTypes)
		assert.Equal(t, jsonschema.Object, *s.Type.SimpleTypes)
		assert.Contains(t, s.Properties, "title")
		assert.Contains(t, s.Properties, "pages")
	})
}
