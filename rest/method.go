// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Method is an HTTP method a route can be registered for.
type Method int

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
)

var methodNames = map[Method]string{
	MethodGet:    "get",
	MethodPost:   "post",
	MethodPut:    "put",
	MethodPatch:  "patch",
	MethodDelete: "delete",
}

// registrars maps each method to the chi registration for it. Handlers are
// registered as http.Handler values so chi.Walk can hand them back intact.
var registrars = map[Method]func(chi.Router, string, http.Handler){
	MethodGet: func(r chi.Router, pattern string, h http.Handler) {
		r.Method(http.MethodGet, pattern, h)
	},
	MethodPost: func(r chi.Router, pattern string, h http.Handler) {
		r.Method(http.MethodPost, pattern, h)
	},
	MethodPut: func(r chi.Router, pattern string, h http.Handler) {
		r.Method(http.MethodPut, pattern, h)
	},
	MethodPatch: func(r chi.Router, pattern string, h http.Handler) {
		r.Method(http.MethodPatch, pattern, h)
	},
	MethodDelete: func(r chi.Router, pattern string, h http.Handler) {
		r.Method(http.MethodDelete, pattern, h)
	},
}

// String returns the lowercase method name as used in OpenAPI documents.
func (m Method) String() string {
	name, ok := methodNames[m]
	if !ok {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return name
}

// ParseMethod parses a case insensitive HTTP method name.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(s)
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("rest: unsupported http method: %q", s)
}
