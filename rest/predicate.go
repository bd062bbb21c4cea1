// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	swaggest "github.com/swaggest/jsonschema-go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaResource = "request.json"

var printer = message.NewPrinter(language.English)

// predicate is a compiled schema. It normalizes values before validating
// them, see normalize.
type predicate struct {
	source   *swaggest.Schema
	compiled *jsonschema.Schema
}

func compilePredicate(s *swaggest.Schema) (*predicate, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.AssertFormat()
	err = c.AddResource(schemaResource, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &predicate{
		source:   s,
		compiled: compiled,
	}, nil
}

// validate returns the normalized value along with any violations.
// A nil predicate accepts everything.
func (p *predicate) validate(v any) (any, []Violation, error) {
	if p == nil {
		return v, nil, nil
	}

	v = normalize(p.source, v)

	err := p.compiled.Validate(v)
	if err == nil {
		return v, nil, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return v, nil, err
	}
	return v, violationsOf(verr), nil
}

// Violation is a single schema violation.
type Violation struct {
	// InstancePath is the JSON pointer to the offending value.
	InstancePath string `json:"instancePath"`

	// Keyword is the schema keyword which failed, e.g. "required" or "type".
	Keyword string `json:"keyword"`

	Message string         `json:"message"`
	Params  map[string]any `json:"params"`

	// SchemaPath is the JSON pointer fragment of the failing keyword.
	SchemaPath string `json:"schemaPath"`
}

func violationsOf(verr *jsonschema.ValidationError) []Violation {
	var vs []Violation
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			vs = append(vs, leafViolations(e)...)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return vs
}

func leafViolations(e *jsonschema.ValidationError) []Violation {
	keywordPath := e.ErrorKind.KeywordPath()
	keyword := "schema"
	if len(keywordPath) > 0 {
		keyword = keywordPath[len(keywordPath)-1]
	}

	base := Violation{
		InstancePath: instancePath(e.InstanceLocation),
		Keyword:      keyword,
		Message:      e.ErrorKind.LocalizedString(printer),
		Params:       map[string]any{},
		SchemaPath:   schemaPath(e.SchemaURL, keywordPath),
	}

	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		vs := make([]Violation, 0, len(k.Missing))
		for _, name := range k.Missing {
			v := base
			v.Message = (&kind.Required{Missing: []string{name}}).LocalizedString(printer)
			v.Params = map[string]any{"missingProperty": name}
			vs = append(vs, v)
		}
		return vs
	case *kind.AdditionalProperties:
		vs := make([]Violation, 0, len(k.Properties))
		for _, name := range k.Properties {
			v := base
			v.Params = map[string]any{"additionalProperty": name}
			vs = append(vs, v)
		}
		return vs
	case *kind.Type:
		base.Params["type"] = strings.Join(k.Want, ",")
	case *kind.Enum:
		base.Params["allowedValues"] = k.Want
	case *kind.Const:
		base.Params["allowedValue"] = k.Want
	case *kind.Format:
		base.Params["format"] = k.Want
	case *kind.Pattern:
		base.Params["pattern"] = k.Want
	case *kind.MinLength:
		base.Params["limit"] = k.Want
	case *kind.MaxLength:
		base.Params["limit"] = k.Want
	case *kind.MinItems:
		base.Params["limit"] = k.Want
	case *kind.MaxItems:
		base.Params["limit"] = k.Want
	case *kind.Minimum:
		base.Params["comparison"] = ">="
		base.Params["limit"] = ratValue(k.Want.FloatString(6))
	case *kind.Maximum:
		base.Params["comparison"] = "<="
		base.Params["limit"] = ratValue(k.Want.FloatString(6))
	}
	return []Violation{base}
}

func ratValue(s string) json.Number {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return json.Number(s)
}

func instancePath(loc []string) string {
	if len(loc) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range loc {
		sb.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		tok = strings.ReplaceAll(tok, "/", "~1")
		sb.WriteString(tok)
	}
	return sb.String()
}

func schemaPath(schemaURL string, keywordPath []string) string {
	frag := ""
	if i := strings.IndexByte(schemaURL, '#'); i >= 0 {
		frag = schemaURL[i+1:]
	}
	if len(keywordPath) == 0 {
		return "#" + frag
	}
	return "#" + frag + "/" + strings.Join(keywordPath, "/")
}
