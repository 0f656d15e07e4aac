package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/internal/mcp/prompts"
	"github.com/upstage-ai/upstage-mcp/internal/mcp/tools"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
)

// serverName identifies this server to MCP clients.
const serverName = "upstage-mcp"

// Server wraps the MCP server with the Upstage document pipelines. The same
// instance backs both transports: the SDK session layer drives stdio, and the
// HTTP handler dispatches into the shared registry directly.
type Server struct {
	mcpServer *sdkmcp.Server
	deps      *tools.Deps

	registry      *tools.Registry
	promptEntries []prompts.Entry

	enableBuiltinTools   bool
	enableBuiltinPrompts bool

	customRegistrations []func(*sdkmcp.Server)
}

// ServerOption adjusts how NewServer assembles the Server.
type ServerOption func(*Server)

// WithBuiltinTools turns on the builtin document tools and the upstage://
// resources.
func WithBuiltinTools() ServerOption {
	return func(s *Server) {
		s.enableBuiltinTools = true
	}
}

// WithBuiltinPrompts turns on the builtin workflow prompts.
func WithBuiltinPrompts() ServerOption {
	return func(s *Server) {
		s.enableBuiltinPrompts = true
	}
}

// WithCustomRegistration runs fn against the underlying SDK server during
// construction, so callers can add their own tools, prompts, or resources.
// Extensions registered this way are only visible on the stdio transport.
func WithCustomRegistration(fn func(*sdkmcp.Server)) ServerOption {
	return func(s *Server) {
		s.customRegistrations = append(s.customRegistrations, fn)
	}
}

// NewServer assembles the server shared by both transports.
func NewServer(deps *tools.Deps, opts ...ServerOption) (*Server, error) {
	if deps == nil {
		return nil, fmt.Errorf("deps is required")
	}

	s := &Server{
		deps: deps,
		mcpServer: sdkmcp.NewServer(&sdkmcp.Implementation{
			Name:    serverName,
			Version: config.Version,
		}, nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer.AddReceivingMiddleware(LoggingMiddleware())

	if s.enableBuiltinTools {
		s.registry = tools.Register(s.mcpServer, deps)
		s.registerResources()
	}
	if s.enableBuiltinPrompts {
		s.promptEntries = prompts.Entries(&prompts.Config{
			OutputDir:     deps.Config.OutputDir,
			TemplateNames: schema.TemplateNames(),
		})
		for _, e := range s.promptEntries {
			s.mcpServer.AddPrompt(e.Prompt, e.Handler)
		}
	}
	for _, fn := range s.customRegistrations {
		fn(s.mcpServer)
	}

	return s, nil
}

// Run serves MCP over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer exposes the underlying SDK server to tests.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}
