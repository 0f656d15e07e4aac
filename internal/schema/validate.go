package schema

import (
	"encoding/json"
	"fmt"
)

// ShapeError reports a caller-supplied schema that does not match the
// required envelope structure. Each violated rule has its own message.
type ShapeError struct {
	Message string
}

func (e *ShapeError) Error() string { return e.Message }

// MalformedJSONError reports schema text that is not valid JSON, carrying
// the parser's own message.
type MalformedJSONError struct {
	Cause error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed schema JSON: %s", e.Cause.Error())
}

func (e *MalformedJSONError) Unwrap() error { return e.Cause }

// ValidateShape checks that candidate matches the documented envelope:
// a top-level "json_schema" key, a non-empty schema name, schema.type
// equal to "object", and a non-empty properties mapping. It checks exactly
// this structure and nothing deeper.
func ValidateShape(candidate map[string]any) error {
	rawNamed, ok := candidate["json_schema"]
	if !ok {
		return &ShapeError{Message: `schema is missing the required "json_schema" key`}
	}
	named, ok := rawNamed.(map[string]any)
	if !ok {
		return &ShapeError{Message: `schema is missing the required "json_schema" key`}
	}

	name, _ := named["name"].(string)
	if name == "" {
		return &ShapeError{Message: `json_schema.name must be a non-empty string`}
	}

	inner, _ := named["schema"].(map[string]any)
	if t, _ := inner["type"].(string); t != "object" {
		return &ShapeError{Message: `json_schema.schema.type must be "object"`}
	}

	props, _ := inner["properties"].(map[string]any)
	if len(props) == 0 {
		return &ShapeError{Message: `json_schema.schema.properties must be a non-empty object`}
	}

	return nil
}

// Parse decodes schema text into an envelope map. Syntax errors surface as
// *MalformedJSONError; structural problems propagate unchanged from
// ValidateShape.
func Parse(text string) (map[string]any, error) {
	var candidate map[string]any
	if err := json.Unmarshal([]byte(text), &candidate); err != nil {
		return nil, &MalformedJSONError{Cause: err}
	}
	if err := ValidateShape(candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// EnvelopeToMap round-trips a built envelope through JSON into the generic
// map form used by ValidateShape and the request builder.
func EnvelopeToMap(rf *ResponseFormat) (map[string]any, error) {
	data, err := json.Marshal(rf)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
