package tools

import (
	"github.com/upstage-ai/upstage-mcp/internal/artifacts"
	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client *upstage.Client
	Config *config.Config
	Writer *output.Writer
	Store  *artifacts.Store

	// Progress receives pipeline checkpoint updates. When nil, checkpoints
	// are logged at debug level.
	Progress Progress
}
