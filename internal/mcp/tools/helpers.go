// Package tools contains the MCP tool implementations for the Upstage
// document pipelines.
package tools

import (
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MimeJSON is the MIME type reported for JSON resource contents.
const MimeJSON = "application/json"

// MakeJSONToolResult marshals v and wraps it as the text content of a
// successful tool result.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(b)}},
	}, nil
}

// ErrorResult renders a pipeline failure as an in-band tool result. Every
// tool failure, from a missing file to an API 500, takes this shape so
// clients see "Error: <message>" text with isError set rather than a
// protocol-level fault.
func ErrorResult(err error) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
