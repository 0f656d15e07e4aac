package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/config"
)

// serverConfig collects everything the options can override before the
// server is assembled.
type serverConfig struct {
	config *config.Config

	logLevel string
	logFile  string

	// Progress sink shared by all builtin tools.
	progress Progress

	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	// Registration callbacks. Closures keep the generic type parameters of
	// each custom tool without serverConfig needing to know them.
	toolRegistrations     []func(*mcp.Server)
	promptRegistrations   []func(*mcp.Server)
	resourceRegistrations []func(*mcp.Server)

	// Deferred registrations run once Deps exist.
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

// Option customizes server construction.
type Option func(*serverConfig)

// WithLogLevel overrides the LOG_LEVEL environment setting
// (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile overrides the LOG_FILE environment setting. An empty path
// keeps logging on stderr only.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithProgress installs a sink for pipeline checkpoint updates. Every
// builtin document tool reports through it. Without this option,
// checkpoints go to the debug log.
func WithProgress(sink Progress) Option {
	return func(cfg *serverConfig) {
		cfg.progress = sink
	}
}

// WithoutBuiltinTools drops the builtin document tools and resources,
// leaving only what the caller registers.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// WithoutBuiltinPrompts drops the builtin workflow prompts.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinPrompts = true
	}
}

// WithTool registers a custom tool alongside the builtin ones. In is
// unmarshaled from the call arguments and Out marshaled into the result:
//
//	type PageCountInput struct {
//	    ResultPath string `json:"result_path"`
//	}
//
//	type PageCountOutput struct {
//	    Pages int `json:"pages"`
//	}
//
//	func countPages(ctx context.Context, req *mcp.CallToolRequest, in PageCountInput) (*mcp.CallToolResult, PageCountOutput, error) {
//	    ...
//	}
//
//	mcpsrv.WithTool(&mcp.Tool{Name: "count_pages", Description: "Count pages in a parse result"}, countPages)
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.toolRegistrations = append(cfg.toolRegistrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a custom tool whose handler is built from Deps.
// Use it when the tool needs the API client, the result store, or the
// output writer:
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "recent_extractions", Description: "List recent extraction results"},
//	    func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, ListOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, ListOutput, error) {
//	            arts, err := d.Store.Recent(ctx, "information_extraction", in.Limit)
//	            // ...
//	        }
//	    },
//	)
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.deferredToolRegistrations = append(cfg.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// WithPrompt registers a custom prompt next to the builtin workflow
// prompts.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.promptRegistrations = append(cfg.promptRegistrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a custom resource template next to the
// builtin upstage:// resources.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.resourceRegistrations = append(cfg.resourceRegistrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
