package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upstage-ai/upstage-mcp/internal/schema"
)

func TestGenerateSchema_ReturnsEnvelopeAndStringCopy(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(schemaGenPath, completionBody(`{
		"json_schema": {
			"name": "bank_statement_schema",
			"schema": {
				"type": "object",
				"properties": {"account_number": {"type": "string"}}
			}
		}
	}`))
	d := newTestDeps(t, backend)

	res, out, err := ToolGenerateSchema(d)(context.Background(), nil, GenerateSchemaInput{
		FilePath: writeDoc(t, "statement.pdf"),
	})
	require.NoError(t, err)
	require.Nil(t, res)

	envelope, ok := out.Schema.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", envelope["type"])

	// The string copy is itself a valid envelope, ready for schema_json.
	parsed, err := schema.Parse(out.SchemaJSON)
	require.NoError(t, err)
	assert.Contains(t, parsed, "json_schema")

	// So is the saved file, ready for schema_path.
	data, err := os.ReadFile(out.ResultSavedTo)
	require.NoError(t, err)
	_, err = schema.Parse(string(data))
	require.NoError(t, err)

	assert.Contains(t, out.ResultSavedTo, "_generated_schema.json")
	assert.Contains(t, out.Hint, "extract_information")
}

func TestGenerateSchema_MissingJSONSchemaKey(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(schemaGenPath, completionBody(`{"schema": {"type": "object"}}`))
	d := newTestDeps(t, backend)

	res, _, err := ToolGenerateSchema(d)(context.Background(), nil, GenerateSchemaInput{
		FilePath: writeDoc(t, "doc.pdf"),
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeInvalidSchemaResponse)
}

func TestGenerateSchema_NonJSONContent(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(schemaGenPath, completionBody("I could not find a schema"))
	d := newTestDeps(t, backend)

	res, _, err := ToolGenerateSchema(d)(context.Background(), nil, GenerateSchemaInput{
		FilePath: writeDoc(t, "doc.pdf"),
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeInvalidAPIResponse)
}

func TestGenerateSchema_SendsDataURIMessage(t *testing.T) {
	backend := newTestBackend(t)
	var gotBody []byte
	backend.handle(schemaGenPath, func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write([]byte(completionBody(`{"json_schema": {"name": "s", "schema": {"type": "object", "properties": {"a": {"type": "string"}}}}}`)))
	})
	d := newTestDeps(t, backend)

	_, _, err := ToolGenerateSchema(d)(context.Background(), nil, GenerateSchemaInput{
		FilePath: writeDoc(t, "doc.png"),
	})
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "information-extract", req["model"])
	assert.NotContains(t, req, "response_format")

	messages := req["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	imageURL := content[0].(map[string]any)["image_url"].(map[string]any)
	assert.Contains(t, imageURL["url"], "data:image/png;base64,")
}
