package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/resultquery"
	"github.com/upstage-ai/upstage-mcp/pkg/docquery"
)

// QueryResultInput is the input for query_result.
type QueryResultInput struct {
	ResultPath string `json:"result_path" jsonschema:"required,Path to a saved result file, as returned in result_saved_to"`
	Expression string `json:"expression" jsonschema:"required,JQ expression to run against the result JSON, e.g. .content.text or .elements[].category"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 50)"`
}

// QueryResultOutput is the output for query_result.
type QueryResultOutput struct {
	Values []any    `json:"values,omitzero"`
	Errors []string `json:"errors,omitzero"`
	Count  int      `json:"count"`
	Hint   string   `json:"hint,omitempty"`
}

// ToolQueryResult runs a JQ expression against one saved result file.
func ToolQueryResult(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryResultInput) (*sdkmcp.CallToolResult, QueryResultOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryResultInput) (*sdkmcp.CallToolResult, QueryResultOutput, error) {
		doc, err := d.Store.Load(ctx, input.ResultPath)
		if err != nil {
			return ErrorResult(wrapStoreError(input.ResultPath, err)), QueryResultOutput{}, nil
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = d.Config.DefaultQueryLimit
		}

		res, err := resultquery.Run(doc, input.Expression, maxResults)
		if err != nil {
			return ErrorResult(ErrInvalidInput(err.Error())), QueryResultOutput{}, nil
		}

		out := QueryResultOutput{
			Values: res.Values,
			Errors: res.Errors,
			Count:  len(res.Values),
		}
		if res.RawCount > len(res.Values) {
			out.Hint = fmt.Sprintf("Showing %d of %d values; raise max_results to see more.", len(res.Values), res.RawCount)
		}

		return nil, out, nil
	}
}

// QueryParsedContentInput is the input for query_parsed_content.
type QueryParsedContentInput struct {
	ResultPath string `json:"result_path" jsonschema:"required,Path to a saved parse_document result file"`
	Selector   string `json:"selector" jsonschema:"required,CSS selector or XPath expression to run against the parsed HTML"`
	Mode       string `json:"mode,omitempty" jsonschema:"Selector language: auto (default), css, or xpath. Auto treats selectors starting with / as XPath"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 50)"`
}

// QueryParsedContentOutput is the output for query_parsed_content.
type QueryParsedContentOutput struct {
	Values []string `json:"values,omitzero"`
	Count  int      `json:"count"`
	Mode   string   `json:"mode"`
	Hint   string   `json:"hint,omitempty"`
}

// ToolQueryParsedContent runs a CSS or XPath selector against the HTML
// rendering inside a saved parse result.
func ToolQueryParsedContent(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryParsedContentInput) (*sdkmcp.CallToolResult, QueryParsedContentOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryParsedContentInput) (*sdkmcp.CallToolResult, QueryParsedContentOutput, error) {
		mode := input.Mode
		if mode == "" {
			mode = docquery.ModeAuto
		}
		if mode != docquery.ModeAuto && mode != docquery.ModeCSS && mode != docquery.ModeXPath {
			return ErrorResult(ErrInvalidInput(fmt.Sprintf(
				"unknown mode %q: expected auto, css, or xpath", input.Mode,
			))), QueryParsedContentOutput{}, nil
		}

		doc, err := d.Store.Load(ctx, input.ResultPath)
		if err != nil {
			return ErrorResult(wrapStoreError(input.ResultPath, err)), QueryParsedContentOutput{}, nil
		}

		html, err := parsedHTML(doc)
		if err != nil {
			return ErrorResult(err), QueryParsedContentOutput{}, nil
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = d.Config.DefaultQueryLimit
		}

		res, err := docquery.Query(html, input.Selector, mode, maxResults)
		if err != nil {
			return ErrorResult(ErrInvalidInput(err.Error())), QueryParsedContentOutput{}, nil
		}

		out := QueryParsedContentOutput{
			Values: res.Values,
			Count:  res.Count,
			Mode:   res.Mode,
		}
		if res.Count == 0 {
			out.Hint = "No matches. Inspect the HTML first with query_result and expression .content.html."
		}

		return nil, out, nil
	}
}

// parsedHTML digs the HTML rendering out of a saved parse result.
func parsedHTML(doc map[string]any) (string, error) {
	content, ok := doc["content"].(map[string]any)
	if !ok {
		return "", ErrInvalidInput("result has no content object: query_parsed_content works on parse_document results")
	}
	html, ok := content["html"].(string)
	if !ok || html == "" {
		return "", ErrInvalidInput("result has no content.html field: run parse_document with output_formats including html")
	}
	return html, nil
}

// wrapStoreError maps artifact store failures onto tool error codes.
func wrapStoreError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &CodedError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("result file not found: %s", path),
			Cause:   err,
		}
	}
	return ErrInvalidInput(err.Error())
}
