package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/artifacts"
	"github.com/upstage-ai/upstage-mcp/internal/output"
)

// SearchResultsInput is the input for search_results.
type SearchResultsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Free text search over saved result files. Tokens are ANDed against file names, categories, and top-level JSON keys. Empty lists the most recent results."`
	Category string `json:"category,omitempty" jsonschema:"Restrict to one result category: document_parsing, information_extraction, information_extraction/schemas, or document_classification"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default: 20)"`
}

// ResultInfo is a summary of one saved result file.
type ResultInfo struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// SearchResultsOutput is the output for search_results.
type SearchResultsOutput struct {
	Results []ResultInfo `json:"results,omitzero"`
	Count   int          `json:"count"`
	Hint    string       `json:"hint,omitempty"`
}

// BuildResultInfo converts a store artifact into search output.
func BuildResultInfo(a artifacts.Artifact) ResultInfo {
	return ResultInfo{
		Path:     a.Path,
		Category: a.Category,
		Name:     a.Name,
		Size:     a.Size,
		Modified: a.Modified.UTC().Format(time.RFC3339),
	}
}

// ToolSearchResults searches previously saved pipeline results.
func ToolSearchResults(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchResultsInput) (*sdkmcp.CallToolResult, SearchResultsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchResultsInput) (*sdkmcp.CallToolResult, SearchResultsOutput, error) {
		if input.Category != "" && !validCategory(input.Category) {
			return ErrorResult(ErrInvalidInput(fmt.Sprintf(
				"unknown category %q: expected one of %v", input.Category, output.Categories(),
			))), SearchResultsOutput{}, nil
		}

		limit := input.Limit
		if limit <= 0 {
			limit = d.Config.DefaultSearchLimit
		}

		found, err := d.Store.Search(ctx, input.Query, input.Category, limit)
		if err != nil {
			return ErrorResult(err), SearchResultsOutput{}, nil
		}

		results := make([]ResultInfo, len(found))
		for i, a := range found {
			results[i] = BuildResultInfo(a)
		}

		out := SearchResultsOutput{
			Results: results,
			Count:   len(results),
		}
		if len(found) == 0 {
			out.Hint = "No saved results matched. Run parse_document, extract_information, or classify_document first, or loosen the query."
		} else {
			out.Hint = "Pass a result path to query_result (JQ) or query_parsed_content (CSS/XPath) to drill in."
		}

		return nil, out, nil
	}
}

func validCategory(category string) bool {
	for _, c := range output.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
