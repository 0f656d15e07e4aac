package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upstage-ai/upstage-mcp/internal/artifacts"
	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// API paths the backend fake can serve.
const (
	digitizePath       = "/document-digitization"
	extractionPath     = "/information-extraction/chat/completions"
	schemaGenPath      = "/information-extraction/schema-generation/chat/completions"
	classificationPath = "/document-classification/chat/completions"
)

// testBackend is a canned Upstage API that counts requests per path.
type testBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests map[string]int
	handlers map[string]http.HandlerFunc
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	b := &testBackend{
		requests: make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[r.URL.Path]++
		h := b.handlers[r.URL.Path]
		b.mu.Unlock()

		if h == nil {
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *testBackend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

// respond registers a 200 handler that always writes body.
func (b *testBackend) respond(path, body string) {
	b.handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func (b *testBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

func (b *testBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.requests {
		n += c
	}
	return n
}

// newTestDeps builds tool deps against the backend fake, with results written
// under a per-test temp dir.
func newTestDeps(t *testing.T, backend *testBackend) *Deps {
	t.Helper()

	baseDir := t.TempDir()
	store, err := artifacts.NewStore(baseDir, 2, 16, 0)
	require.NoError(t, err)

	return &Deps{
		Client: upstage.New("test-key",
			upstage.WithBaseURL(backend.srv.URL),
			upstage.WithRetryDelays(time.Millisecond, 4*time.Millisecond),
			upstage.WithRequestTimeout(5*time.Second),
		),
		Config: &config.Config{
			ParseModel:         "document-parse",
			ExtractModel:       "information-extract",
			ClassifyModel:      "document-classify",
			DefaultSearchLimit: 20,
			DefaultQueryLimit:  50,
		},
		Writer: output.NewWriter(baseDir),
		Store:  store,
	}
}

// writeDoc creates a small document file with an accepted extension.
func writeDoc(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake document bytes"), 0644))
	return path
}

// completionBody renders a chat completion response with the given message
// content.
func completionBody(content string) string {
	b, err := json.Marshal(map[string]any{
		"id": "req-1",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120},
	})
	if err != nil {
		panic(err)
	}
	return string(b)
}

// sampleSchemaJSON builds a small valid response_format envelope as JSON text.
func sampleSchemaJSON(t *testing.T) string {
	t.Helper()
	text, err := schema.ToJSON(schema.Build("invoice_schema", map[string]schema.FieldSpec{
		"invoice_number": {Type: "string", Description: "Invoice number"},
		"total_amount":   {Type: "number", Description: "Grand total"},
	}))
	require.NoError(t, err)
	return text
}

// errorText unwraps the text of an in-band error result.
func errorText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	assert.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

// progressRecorder collects checkpoint updates for assertions.
type progressRecorder struct {
	mu     sync.Mutex
	points []progressPoint
}

type progressPoint struct {
	percent int
	stage   string
}

func (p *progressRecorder) sink(percent int, stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.points = append(p.points, progressPoint{percent, stage})
}

// assertCompleted checks that checkpoints never decreased and finished at 100.
func (p *progressRecorder) assertCompleted(t *testing.T) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	require.NotEmpty(t, p.points)
	prev := -1
	for _, pt := range p.points {
		assert.GreaterOrEqual(t, pt.percent, prev, "progress went backwards at stage %s", pt.stage)
		assert.LessOrEqual(t, pt.percent, 100)
		prev = pt.percent
	}
	assert.Equal(t, 100, p.points[len(p.points)-1].percent)
	assert.Equal(t, StageDone, p.points[len(p.points)-1].stage)
}
