package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Entry describes one registered tool. The registry keeps enough alongside
// the SDK registration for transports that dispatch tool calls themselves.
type Entry struct {
	Name         string
	Description  string
	InputSchema  *jsonschema.Schema
	OutputSchema *jsonschema.Schema

	call    func(ctx context.Context, args json.RawMessage) *sdkmcp.CallToolResult
	install func(srv *sdkmcp.Server)
}

// Registry holds every tool in registration order.
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
}

// NewRegistry builds the registry of all tools.
func NewRegistry(d *Deps) *Registry {
	r := &Registry{byName: make(map[string]*Entry)}

	// Tool 1: parse_document
	add(r, &sdkmcp.Tool{
		Name:        "parse_document",
		Description: "Parse a document file (PDF, image, or office format) into structured content with HTML, text, and markdown renderings. The full API response is saved to disk and the save path is returned alongside the content.",
	}, ToolParseDocument(d))

	// Tool 2: extract_information
	add(r, &sdkmcp.Tool{
		Name:        "extract_information",
		Description: "Extract structured fields from a document. Provide a response_format schema via schema_json or schema_path, or let the tool generate one from the document first. Returns the extracted values plus where the result and schema were saved.",
	}, ToolExtractInformation(d))

	// Tool 3: generate_schema
	add(r, &sdkmcp.Tool{
		Name:        "generate_schema",
		Description: "Analyze a document and propose an extraction schema for it. Returns the schema, a JSON string copy ready for extract_information's schema_json, and the saved schema path.",
	}, ToolGenerateSchema(d))

	// Tool 4: classify_document
	add(r, &sdkmcp.Tool{
		Name:        "classify_document",
		Description: "Classify a document into one category. Uses the built-in category list (invoice, receipt, contract, and so on, ending in others) unless a custom classification schema is supplied via schema_json or schema_path.",
	}, ToolClassifyDocument(d))

	// Tool 5: search_results
	add(r, &sdkmcp.Tool{
		Name:        "search_results",
		Description: "Search saved pipeline results by free text and category. Returns matching result files newest first so their paths can be fed to query_result or query_parsed_content.",
	}, ToolSearchResults(d))

	// Tool 6: query_result
	add(r, &sdkmcp.Tool{
		Name:        "query_result",
		Description: "Run a JQ expression against one saved result file and return the matching values. Use after parse_document or extract_information to pull specific fields without rereading the whole file.",
	}, ToolQueryResult(d))

	// Tool 7: query_parsed_content
	add(r, &sdkmcp.Tool{
		Name:        "query_parsed_content",
		Description: "Run a CSS selector or XPath expression against the HTML inside a saved parse_document result. Mode auto treats selectors starting with / as XPath.",
	}, ToolQueryParsedContent(d))

	return r
}

// Register builds the registry and installs every tool on srv.
func Register(srv *sdkmcp.Server, d *Deps) *Registry {
	r := NewRegistry(d)
	r.Install(srv)
	return r
}

// Install registers every tool on the SDK server.
func (r *Registry) Install(srv *sdkmcp.Server) {
	for _, e := range r.entries {
		e.install(srv)
	}
}

// Entries returns all tools in registration order.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Call dispatches one tool call outside the SDK session layer. The second
// return value is false when no tool with that name exists. Argument decode
// failures surface as in-band error results, same as pipeline failures.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (*sdkmcp.CallToolResult, bool) {
	e, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return e.call(ctx, args), true
}

// add wires one typed handler into the registry. Schema inference failures
// and zero values that fail their own output schema are registration-time
// bugs, so both panic.
func add[In, Out any](r *Registry, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)

	inputSchema, err := jsonschema.ForType(reflect.TypeFor[In](), &jsonschema.ForOptions{})
	if err != nil {
		panic(fmt.Sprintf("tool %q: inferring input schema: %v", t.Name, err))
	}
	var outputSchema *jsonschema.Schema
	if reflect.TypeFor[Out]() != reflect.TypeFor[any]() {
		outputSchema, err = jsonschema.ForType(reflect.TypeFor[Out](), &jsonschema.ForOptions{})
		if err != nil {
			panic(fmt.Sprintf("tool %q: inferring output schema: %v", t.Name, err))
		}
	}

	e := &Entry{
		Name:         t.Name,
		Description:  t.Description,
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
	}
	e.call = func(ctx context.Context, args json.RawMessage) *sdkmcp.CallToolResult {
		var in In
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return ErrorResult(ErrInvalidInput(fmt.Sprintf("decoding arguments for %s: %v", t.Name, err)))
			}
		}

		req := &sdkmcp.CallToolRequest{
			Params: &sdkmcp.CallToolParamsRaw{Name: t.Name, Arguments: args},
		}
		res, out, err := h(ctx, req, in)
		if err != nil {
			return ErrorResult(err)
		}
		if res != nil {
			return res
		}

		jsonRes, err := MakeJSONToolResult(out)
		if err != nil {
			return ErrorResult(err)
		}
		jsonRes.StructuredContent = out
		return jsonRes
	}
	e.install = func(srv *sdkmcp.Server) {
		sdkmcp.AddTool(srv, t, h)
	}

	r.entries = append(r.entries, e)
	r.byName[t.Name] = e
}
