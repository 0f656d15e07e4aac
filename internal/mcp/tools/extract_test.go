package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upstage-ai/upstage-mcp/internal/schema"
)

func boolPtr(b bool) *bool { return &b }

func TestExtractInformation_WithInlineSchema(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(extractionPath, completionBody(`{"invoice_number": "INV-42", "total_amount": 99.5}`))
	d := newTestDeps(t, backend)

	res, out, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "invoice.pdf"),
		SchemaJSON: sampleSchemaJSON(t),
	})
	require.NoError(t, err)
	require.Nil(t, res)

	assert.Equal(t, SchemaSourceInline, out.SchemaSource)
	extraction, ok := out.Extraction.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INV-42", extraction["invoice_number"])

	// Extraction and schema copy land in their own categories.
	assert.Contains(t, out.ResultSavedTo, filepath.Join("information_extraction", "invoice_"))
	assert.Contains(t, out.ResultSavedTo, "_extraction.json")
	assert.Contains(t, out.SchemaSavedTo, filepath.Join("information_extraction", "schemas"))
	assert.Contains(t, out.SchemaSavedTo, "_schema.json")

	// Saved extraction file round-trips.
	data, err := os.ReadFile(out.ResultSavedTo)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "INV-42", saved["invoice_number"])

	require.NotNil(t, out.Verification)
	assert.True(t, out.Verification.Checked)
	assert.True(t, out.Verification.Valid)

	require.NotNil(t, out.Usage)
	assert.Equal(t, 120, out.Usage.TotalTokens)
}

func TestExtractInformation_SchemaJSONBeatsSchemaPath(t *testing.T) {
	backend := newTestBackend(t)
	var gotName string
	backend.handle(extractionPath, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			ResponseFormat struct {
				JSONSchema struct {
					Name string `json:"name"`
				} `json:"json_schema"`
			} `json:"response_format"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		gotName = req.ResponseFormat.JSONSchema.Name
		w.Write([]byte(completionBody(`{"invoice_number": "INV-1"}`)))
	})
	d := newTestDeps(t, backend)

	otherSchema, err := schema.ToJSON(schema.Build("other_schema", map[string]schema.FieldSpec{
		"field": {Type: "string", Description: "x"},
	}))
	require.NoError(t, err)
	schemaPath := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(otherSchema), 0644))

	res, out, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "invoice.pdf"),
		SchemaJSON: sampleSchemaJSON(t),
		SchemaPath: schemaPath,
	})
	require.NoError(t, err)
	require.Nil(t, res)

	assert.Equal(t, "invoice_schema", gotName)
	assert.Equal(t, SchemaSourceInline, out.SchemaSource)
}

func TestExtractInformation_SchemaFromFile(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(extractionPath, completionBody(`{"field": "value"}`))
	d := newTestDeps(t, backend)

	schemaPath := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(sampleSchemaJSON(t)), 0644))

	res, out, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaPath: schemaPath,
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, SchemaSourceFile, out.SchemaSource)
}

func TestExtractInformation_AutoGeneratesSchemaWhenNoneGiven(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(schemaGenPath, completionBody(`{
		"json_schema": {
			"name": "generated_schema",
			"schema": {"type": "object", "properties": {"total": {"type": "number"}}}
		}
	}`))
	backend.respond(extractionPath, completionBody(`{"total": 12.5}`))
	d := newTestDeps(t, backend)

	res, out, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath: writeDoc(t, "receipt.png"),
	})
	require.NoError(t, err)
	require.Nil(t, res)

	assert.Equal(t, 1, backend.count(schemaGenPath))
	assert.Equal(t, 1, backend.count(extractionPath))
	assert.Equal(t, SchemaSourceGenerated, out.SchemaSource)
	assert.Contains(t, out.SchemaSavedTo, "_generated_schema.json")
}

func TestExtractInformation_NoSchemaAndAutoDisabled(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	res, _, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:           writeDoc(t, "doc.pdf"),
		AutoGenerateSchema: boolPtr(false),
	})
	require.NoError(t, err)

	text := errorText(t, res)
	assert.Contains(t, text, ErrCodeNoSchemaAvailable)
	assert.Equal(t, 0, backend.total())
}

func TestExtractInformation_MalformedSchemaJSON(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	res, _, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaJSON: `{"json_schema": `,
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeMalformedJSON)
	assert.Equal(t, 0, backend.total())
}

func TestExtractInformation_BadSchemaShape(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	res, _, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaJSON: `{"not_json_schema": {}}`,
	})
	require.NoError(t, err)

	text := errorText(t, res)
	assert.Contains(t, text, ErrCodeInvalidSchemaShape)
	assert.Contains(t, text, "json_schema")
	assert.Equal(t, 0, backend.total())
}

func TestExtractInformation_MissingSchemaFile(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	res, _, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaPath: filepath.Join(t.TempDir(), "nope.json"),
	})
	require.NoError(t, err)

	text := errorText(t, res)
	assert.Contains(t, text, ErrCodeNotFound)
	assert.Contains(t, text, "nope.json")
	assert.Equal(t, 0, backend.total())
}

func TestExtractInformation_NonJSONContentIsInvalidAPIResponse(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(extractionPath, completionBody("this is not json"))
	d := newTestDeps(t, backend)

	res, _, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaJSON: sampleSchemaJSON(t),
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeInvalidAPIResponse)
}

func TestExtractInformation_EmptyChoicesIsInvalidAPIResponse(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(extractionPath, `{"id": "req-1", "choices": []}`)
	d := newTestDeps(t, backend)

	res, _, err := ToolExtractInformation(d)(context.Background(), nil, ExtractInformationInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaJSON: sampleSchemaJSON(t),
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeInvalidAPIResponse)
}
