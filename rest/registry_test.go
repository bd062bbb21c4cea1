// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeKeys(routes []Route) []string {
	keys := make([]string, len(routes))
	for i, r := range routes {
		keys[i] = r.Method.String() + " " + r.Path
	}
	return keys
}

func TestRegistry_Routes(t *testing.T) {
	t.Run("will return an empty list", func(t *testing.T) {
		t.Run("if nothing was registered", func(t *testing.T) {
			var reg Registry

			assert.Empty(t, reg.Routes())
		})
	})

	t.Run("will return own routes before child routes", func(t *testing.T) {
		t.Run("if children were attached before own routes were added", func(t *testing.T) {
			parent := &Registry{}
			first := &Registry{}
			second := &Registry{}

			parent.AddChild(first, "/a")
			parent.AddChild(second, "/b")
			first.Add(MethodGet, "/one", Operation{})
			second.Add(MethodPost, "/two", Operation{})
			parent.Add(MethodDelete, "/own", Operation{})

			assert.Equal(t, []string{
				"delete /own",
				"get /a/one",
				"post /b/two",
			}, routeKeys(parent.Routes()))
		})
	})

	t.Run("will concatenate prefixes", func(t *testing.T) {
		t.Run("if registries are nested more than one level deep", func(t *testing.T) {
			root := &Registry{}
			mid := &Registry{}
			leaf := &Registry{}

			root.AddChild(mid, "/api")
			mid.AddChild(leaf, "/v1")
			leaf.Add(MethodGet, "/books/:id", Operation{})

			assert.Equal(t, []string{"get /api/v1/books/:id"}, routeKeys(root.Routes()))
		})

		t.Run("if the prefix does not start with a slash", func(t *testing.T) {
			root := &Registry{}
			child := &Registry{}

			root.AddChild(child, "api")
			child.Add(MethodGet, "/books", Operation{})

			assert.Equal(t, []string{"get api/books"}, routeKeys(root.Routes()))
		})
	})

	t.Run("will reflect routes added to a child after it was attached", func(t *testing.T) {
		parent := &Registry{}
		child := &Registry{}
		parent.AddChild(child, "/p")

		require.Empty(t, parent.Routes())

		child.Add(MethodGet, "/later", Operation{Summary: "later"})

		routes := parent.Routes()
		require.Len(t, routes, 1)
		assert.Equal(t, MethodGet, routes[0].Method)
		assert.Equal(t, "/p/later", routes[0].Path)
		assert.Equal(t, "later", routes[0].Operation.Summary)
	})

	t.Run("will keep duplicate routes", func(t *testing.T) {
		var reg Registry
		reg.Add(MethodGet, "/dup", Operation{Summary: "first"})
		reg.Add(MethodGet, "/dup", Operation{Summary: "second"})

		routes := reg.Routes()
		require.Len(t, routes, 2)
		assert.Equal(t, "first", routes[0].Operation.Summary)
		assert.Equal(t, "second", routes[1].Operation.Summary)
	})

	t.Run("will count routes once per attachment", func(t *testing.T) {
		t.Run("if the same child is attached twice", func(t *testing.T) {
			parent := &Registry{}
			child := &Registry{}
			child.Add(MethodGet, "/x", Operation{})

			parent.AddChild(child, "/a")
			parent.AddChild(child, "/b")

			assert.Equal(t, []string{"get /a/x", "get /b/x"}, routeKeys(parent.Routes()))
		})
	})

	t.Run("will not expose internal state", func(t *testing.T) {
		var reg Registry
		reg.Add(MethodGet, "/a", Operation{})

		routes := reg.Routes()
		routes[0].Path = "/mutated"

		assert.Equal(t, "/a", reg.Routes()[0].Path)
	})

	t.Run("will be safe for concurrent use", func(t *testing.T) {
		parent := &Registry{}
		child := &Registry{}
		parent.AddChild(child, "/c")

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				child.Add(MethodGet, "/x", Operation{})
			}()
			go func() {
				defer wg.Done()
				parent.Routes()
			}()
		}
		wg.Wait()

		assert.Len(t, parent.Routes(), 10)
	})
}
