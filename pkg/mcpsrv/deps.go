package mcpsrv

import (
	"github.com/upstage-ai/upstage-mcp/internal/artifacts"
	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/internal/mcp/tools"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// Progress receives pipeline checkpoint updates: a completion percentage
// and a short stage label. Sinks may be slow or panic without affecting
// the tool call that reports through them.
type Progress = tools.Progress

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Client *upstage.Client
	Config *config.Config
	Writer *output.Writer
	Store  *artifacts.Store
}
