// Package schema builds, parses, and checks the json_schema response-format
// envelopes that shape Upstage extraction and classification requests.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// FieldSpec describes one extraction field. Type is one of "string",
// "number", "integer", "boolean", "array", "object", or "null"; Items and
// Properties apply to arrays and objects respectively.
type FieldSpec struct {
	Type        string
	Description string
	Items       *FieldSpec
	Properties  map[string]FieldSpec
}

// ResponseFormat is the envelope sent as response_format on JSON-mode
// calls and accepted from callers supplying their own schema.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema NamedSchema `json:"json_schema"`
}

// NamedSchema pairs a schema name with its object schema.
type NamedSchema struct {
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
}

// Category is one classification label with its human-readable meaning.
type Category struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Build constructs a response-format envelope from an extraction field
// mapping. Construction is pure: no validation beyond the structural
// typing of FieldSpec. Properties are emitted in sorted field order so
// output is deterministic.
func Build(name string, fields map[string]FieldSpec) *ResponseFormat {
	if name == "" {
		name = "document_schema"
	}
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: NamedSchema{
			Name:   name,
			Schema: objectSchema(fields),
		},
	}
}

// BuildClassification constructs the response-format envelope for a
// classification call: an object schema with a single "category" string
// property constrained to the given labels.
func BuildClassification(name string, categories []Category) *ResponseFormat {
	values := make([]any, 0, len(categories))
	var lines []string
	for _, c := range categories {
		values = append(values, c.Value)
		if c.Description != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", c.Value, c.Description))
		}
	}

	category := &jsonschema.Schema{
		Type: "string",
		Enum: values,
	}
	if len(lines) > 0 {
		category.Description = "One of: " + strings.Join(lines, "; ")
	}

	props := jsonschema.NewProperties()
	props.Set("category", category)

	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: NamedSchema{
			Name: name,
			Schema: &jsonschema.Schema{
				Type:       "object",
				Properties: props,
				Required:   []string{"category"},
			},
		},
	}
}

// ToJSON renders a schema envelope (or any schema-shaped value) as
// indented JSON for reuse in later calls.
func ToJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding schema: %w", err)
	}
	return string(data), nil
}

func objectSchema(fields map[string]FieldSpec) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, name := range sortedKeys(fields) {
		props.Set(name, fieldSchema(fields[name]))
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
	}
}

func fieldSchema(spec FieldSpec) *jsonschema.Schema {
	switch spec.Type {
	case "object":
		s := objectSchema(spec.Properties)
		s.Description = spec.Description
		return s
	case "array":
		items := &jsonschema.Schema{Type: "string"}
		if spec.Items != nil {
			items = fieldSchema(*spec.Items)
		}
		return &jsonschema.Schema{
			Type:        "array",
			Description: spec.Description,
			Items:       items,
		}
	default:
		return &jsonschema.Schema{
			Type:        spec.Type,
			Description: spec.Description,
		}
	}
}

func sortedKeys(fields map[string]FieldSpec) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
