package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/mcp/tools"
)

// AddTool registers a tool on srv after checking that the zero value of Out
// satisfies its own inferred schema. The SDK derives "type": "array" for
// slice fields, but encoding/json writes nil slices as null, so a handler
// returning a zero-valued output would fail validation on its first call.
// The check runs at registration and panics naming the offending field, so
// the bug surfaces at startup instead of in live traffic.
//
// Prefer this over [sdkmcp.AddTool]; the option helpers WithTool and
// WithDepsTool already route through it.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
