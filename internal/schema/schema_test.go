package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func sampleFields() map[string]FieldSpec {
	return map[string]FieldSpec{
		"vendor":  {Type: "string", Description: "Vendor name"},
		"total":   {Type: "number", Description: "Total amount"},
		"paid":    {Type: "boolean"},
		"remarks": {Type: "null"},
		"items": {Type: "array", Items: &FieldSpec{
			Type: "object",
			Properties: map[string]FieldSpec{
				"name":  {Type: "string"},
				"price": {Type: "number"},
			},
		}},
	}
}

func TestBuild_Structure(t *testing.T) {
	rf := Build("test_schema", sampleFields())

	if rf.Type != "json_schema" {
		t.Errorf("envelope type = %q, want json_schema", rf.Type)
	}
	if rf.JSONSchema.Name != "test_schema" {
		t.Errorf("schema name = %q", rf.JSONSchema.Name)
	}
	if rf.JSONSchema.Schema.Type != "object" {
		t.Errorf("root schema type = %q, want object", rf.JSONSchema.Schema.Type)
	}

	m, err := EnvelopeToMap(rf)
	if err != nil {
		t.Fatalf("EnvelopeToMap: %v", err)
	}
	if err := ValidateShape(m); err != nil {
		t.Errorf("built schema failed shape validation: %v", err)
	}
}

func TestBuild_DefaultName(t *testing.T) {
	rf := Build("", map[string]FieldSpec{"a": {Type: "string"}})
	if rf.JSONSchema.Name != "document_schema" {
		t.Errorf("default name = %q", rf.JSONSchema.Name)
	}
}

func TestRoundTrip(t *testing.T) {
	rf := Build("roundtrip", sampleFields())

	text, err := ToJSON(rf)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	direct, err := EnvelopeToMap(rf)
	if err != nil {
		t.Fatalf("EnvelopeToMap: %v", err)
	}
	if !reflect.DeepEqual(parsed, direct) {
		t.Errorf("round trip changed the schema:\nparsed: %#v\ndirect: %#v", parsed, direct)
	}
}

func validEnvelope() map[string]any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name": "doc",
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field": map[string]any{"type": "string"},
				},
			},
		},
	}
}

func TestValidateShape_Accepts(t *testing.T) {
	if err := ValidateShape(validEnvelope()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateShape_RejectsEachRuleDistinctly(t *testing.T) {
	missingKey := validEnvelope()
	delete(missingKey, "json_schema")

	missingName := validEnvelope()
	missingName["json_schema"].(map[string]any)["name"] = ""

	wrongType := validEnvelope()
	wrongType["json_schema"].(map[string]any)["schema"].(map[string]any)["type"] = "array"

	noProps := validEnvelope()
	delete(noProps["json_schema"].(map[string]any)["schema"].(map[string]any), "properties")

	cases := []struct {
		name      string
		candidate map[string]any
		fragment  string
	}{
		{"missing discriminator", missingKey, `"json_schema" key`},
		{"missing name", missingName, "name"},
		{"wrong schema type", wrongType, `"object"`},
		{"missing properties", noProps, "properties"},
	}

	seen := map[string]bool{}
	for _, tc := range cases {
		err := ValidateShape(tc.candidate)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) {
			t.Errorf("%s: error type %T, want *ShapeError", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.fragment) {
			t.Errorf("%s: message %q missing %q", tc.name, err.Error(), tc.fragment)
		}
		if seen[err.Error()] {
			t.Errorf("%s: message %q duplicates another rule's message", tc.name, err.Error())
		}
		seen[err.Error()] = true
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(`{"json_schema": `)

	var malformed *MalformedJSONError
	if !errors.As(err, &malformed) {
		t.Fatalf("error type %T, want *MalformedJSONError", err)
	}
	if malformed.Cause == nil || !strings.Contains(err.Error(), malformed.Cause.Error()) {
		t.Errorf("parser message not surfaced: %v", err)
	}
}

func TestParse_PropagatesShapeErrorUnchanged(t *testing.T) {
	text, _ := json.Marshal(map[string]any{"json_schema": map[string]any{"name": ""}})

	_, err := Parse(string(text))
	shapeErr := ValidateShape(map[string]any{"json_schema": map[string]any{"name": ""}})
	if err == nil || shapeErr == nil {
		t.Fatal("expected errors from both paths")
	}
	if err.Error() != shapeErr.Error() {
		t.Errorf("Parse rewrote the shape error: %q vs %q", err.Error(), shapeErr.Error())
	}
}

func TestTemplates_AllPassShapeValidation(t *testing.T) {
	names := TemplateNames()
	want := []string{"business_card", "contract", "invoice", "receipt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("template names = %v, want %v", names, want)
	}

	for _, name := range names {
		tmpl, ok := Template(name)
		if !ok {
			t.Fatalf("template %q missing", name)
		}
		m, err := EnvelopeToMap(tmpl)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := ValidateShape(m); err != nil {
			t.Errorf("template %q fails shape validation: %v", name, err)
		}
	}

	if _, ok := Template("unknown"); ok {
		t.Error("unknown template reported as present")
	}
}

func TestDefaultClassification(t *testing.T) {
	values := DefaultCategoryValues()
	if len(values) != 13 {
		t.Fatalf("got %d categories, want 13", len(values))
	}
	if values[len(values)-1] != "others" {
		t.Errorf("last category = %q, want others", values[len(values)-1])
	}

	rf := DefaultClassification()
	m, err := EnvelopeToMap(rf)
	if err != nil {
		t.Fatalf("EnvelopeToMap: %v", err)
	}
	if err := ValidateShape(m); err != nil {
		t.Errorf("classification envelope fails shape validation: %v", err)
	}

	data, _ := json.Marshal(rf)
	for _, v := range values {
		if !strings.Contains(string(data), `"`+v+`"`) {
			t.Errorf("category %q missing from serialized envelope", v)
		}
	}
}

func TestBuildClassification_EnumAndRequired(t *testing.T) {
	rf := BuildClassification("cls", []Category{
		{Value: "a", Description: "first"},
		{Value: "b", Description: "second"},
	})

	m, err := EnvelopeToMap(rf)
	if err != nil {
		t.Fatalf("EnvelopeToMap: %v", err)
	}
	inner := m["json_schema"].(map[string]any)["schema"].(map[string]any)
	category := inner["properties"].(map[string]any)["category"].(map[string]any)

	enum, ok := category["enum"].([]any)
	if !ok || len(enum) != 2 {
		t.Fatalf("enum = %#v", category["enum"])
	}
	required, _ := inner["required"].([]any)
	if len(required) != 1 || required[0] != "category" {
		t.Errorf("required = %#v", inner["required"])
	}
}
