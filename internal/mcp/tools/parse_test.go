package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_SavesFullResponseAndReturnsContent(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(digitizePath, `{
		"api": "2.0",
		"model": "document-parse",
		"content": {"html": "<p>Hello</p>", "text": "Hello"},
		"elements": [{"id": 0, "category": "paragraph"}],
		"usage": {"pages": 1}
	}`)
	d := newTestDeps(t, backend)

	res, out, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{
		FilePath: writeDoc(t, "invoice.pdf"),
	})
	require.NoError(t, err)
	require.Nil(t, res)

	content, ok := out.Content.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "<p>Hello</p>", content["html"])
	assert.Equal(t, 1, out.Elements)

	// The saved file holds the complete raw response, not just the content.
	assert.Contains(t, out.ResultSavedTo, filepath.Join("document_parsing", "invoice_"))
	data, err := os.ReadFile(out.ResultSavedTo)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "2.0", saved["api"])
	assert.Contains(t, saved, "elements")
	assert.Contains(t, saved, "usage")
}

func TestParseDocument_PassesOutputFormatsThrough(t *testing.T) {
	backend := newTestBackend(t)
	var gotFormats string
	backend.handle(digitizePath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFormats = r.FormValue("output_formats")
		assert.Equal(t, "document-parse", r.FormValue("model"))
		assert.Equal(t, "force", r.FormValue("ocr"))
		w.Write([]byte(`{"content": {"html": "<p>x</p>"}}`))
	})
	d := newTestDeps(t, backend)

	res, _, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{
		FilePath:      writeDoc(t, "scan.png"),
		OutputFormats: []string{"html", "markdown"},
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.JSONEq(t, `["html","markdown"]`, gotFormats)
}

func TestParseDocument_ValidationFailureMakesNoRequests(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	res, _, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{
		FilePath: filepath.Join(t.TempDir(), "missing.pdf"),
	})
	require.NoError(t, err)

	text := errorText(t, res)
	assert.True(t, strings.HasPrefix(text, "Error: "), "got %q", text)
	assert.Contains(t, text, ErrCodeNotFound)
	assert.Contains(t, text, "missing.pdf")
	assert.Equal(t, 0, backend.total())
}

func TestParseDocument_UnsupportedExtensionMakesNoRequests(t *testing.T) {
	backend := newTestBackend(t)
	d := newTestDeps(t, backend)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	res, _, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{FilePath: path})
	require.NoError(t, err)

	text := errorText(t, res)
	assert.Contains(t, text, ErrCodeUnsupportedFormat)
	assert.Contains(t, text, ".txt")
	assert.Equal(t, 0, backend.total())
}

func TestParseDocument_APIErrorBecomesInBandResult(t *testing.T) {
	backend := newTestBackend(t)
	backend.handle(digitizePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "unsupported page range"}}`))
	})
	d := newTestDeps(t, backend)

	res, _, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{
		FilePath: writeDoc(t, "doc.pdf"),
	})
	require.NoError(t, err)

	text := errorText(t, res)
	assert.Contains(t, text, ErrCodeAPIError)
	assert.Contains(t, text, "unsupported page range")
	// 400s are not retried.
	assert.Equal(t, 1, backend.count(digitizePath))
}

func TestParseDocument_ReportsMonotonicProgress(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(digitizePath, `{"content": {"text": "ok"}}`)
	d := newTestDeps(t, backend)

	rec := &progressRecorder{}
	d.Progress = rec.sink

	res, _, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{
		FilePath: writeDoc(t, "doc.pdf"),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	rec.assertCompleted(t)
}

func TestParseDocument_PanickingProgressSinkDoesNotBreakPipeline(t *testing.T) {
	backend := newTestBackend(t)
	backend.respond(digitizePath, `{"content": {"text": "ok"}}`)
	d := newTestDeps(t, backend)
	d.Progress = func(percent int, stage string) {
		panic("sink gone wrong")
	}

	res, out, err := ToolParseDocument(d)(context.Background(), nil, ParseDocumentInput{
		FilePath: writeDoc(t, "doc.pdf"),
	})
	require.NoError(t, err)
	require.Nil(t, res)
	assert.NotEmpty(t, out.ResultSavedTo)
}
