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

func TestClassifyDocument_EndToEndWithDefaultCategories(t *testing.T) {
	backend := newTestBackend(t)
	var gotBody []byte
	backend.handle(classificationPath, func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write([]byte(completionBody("invoice")))
	})
	d := newTestDeps(t, backend)

	res, out, err := ToolClassifyDocument(d)(context.Background(), nil, ClassifyDocumentInput{
		FilePath: writeDoc(t, "bill.pdf"),
	})
	require.NoError(t, err)
	require.Nil(t, res)

	// The label is one of the built-in categories.
	assert.Contains(t, schema.DefaultCategoryValues(), out.Classification)
	assert.Equal(t, "invoice", out.Classification)

	// The request carried the default category enum.
	var req map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "document-classify", req["model"])
	rf := req["response_format"].(map[string]any)
	category := rf["json_schema"].(map[string]any)["schema"].(map[string]any)["properties"].(map[string]any)["category"].(map[string]any)
	enum := category["enum"].([]any)
	assert.Len(t, enum, len(schema.DefaultCategoryValues()))
	assert.Equal(t, "others", enum[len(enum)-1])

	// A metadata file exists at result_saved_to with the classification key.
	assert.Contains(t, out.ResultSavedTo, filepath.Join("document_classification", "bill_"))
	data, err := os.ReadFile(out.ResultSavedTo)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "invoice", saved["classification"])
	assert.Contains(t, saved, "source_file")
	assert.Contains(t, saved, "model")

	// The raw API response rides along in the record.
	raw, ok := saved["raw_response"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, raw, "choices")
}

func TestClassifyDocument_ParsesObjectLabel(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(classificationPath, completionBody(`{"category": "receipt"}`))
	d := newTestDeps(t, backend)

	res, out, err := ToolClassifyDocument(d)(context.Background(), nil, ClassifyDocumentInput{
		FilePath: writeDoc(t, "doc.png"),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, "receipt", out.Classification)
}

func TestClassifyDocument_ParsesQuotedLabel(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(classificationPath, completionBody(`"contract"`))
	d := newTestDeps(t, backend)

	res, out, err := ToolClassifyDocument(d)(context.Background(), nil, ClassifyDocumentInput{
		FilePath: writeDoc(t, "doc.png"),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, "contract", out.Classification)
}

func TestClassifyDocument_CustomSchemaJSONWins(t *testing.T) {
	backend := newTestBackend(t)
	var gotBody []byte
	backend.handle(classificationPath, func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write([]byte(completionBody("blue")))
	})
	d := newTestDeps(t, backend)

	custom, err := schema.EnvelopeToMap(schema.BuildClassification("color_schema", []schema.Category{
		{Value: "red", Description: "Red documents"},
		{Value: "blue", Description: "Blue documents"},
	}))
	require.NoError(t, err)
	customText, err := json.Marshal(custom)
	require.NoError(t, err)

	res, out, err := ToolClassifyDocument(d)(context.Background(), nil, ClassifyDocumentInput{
		FilePath:   writeDoc(t, "doc.pdf"),
		SchemaJSON: string(customText),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.Equal(t, "blue", out.Classification)

	var req map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &req))
	name := req["response_format"].(map[string]any)["json_schema"].(map[string]any)["name"]
	assert.Equal(t, "color_schema", name)
}

func TestClassifyDocument_EmptyLabelIsInvalidAPIResponse(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(classificationPath, completionBody("   "))
	d := newTestDeps(t, backend)

	res, _, err := ToolClassifyDocument(d)(context.Background(), nil, ClassifyDocumentInput{
		FilePath: writeDoc(t, "doc.pdf"),
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeInvalidAPIResponse)
}

func TestClassifyDocument_ValidationFailureMakesNoRequests(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	res, _, err := ToolClassifyDocument(d)(context.Background(), nil, ClassifyDocumentInput{
		FilePath: filepath.Join(t.TempDir(), "ghost.pdf"),
	})
	require.NoError(t, err)

	assert.Contains(t, errorText(t, res), ErrCodeNotFound)
	assert.Equal(t, 0, backend.total())
}
