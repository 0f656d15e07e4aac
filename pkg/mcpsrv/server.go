package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/artifacts"
	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/internal/logging"
	"github.com/upstage-ai/upstage-mcp/internal/mcp"
	"github.com/upstage-ai/upstage-mcp/internal/mcp/tools"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// Server is the public entry point for embedding the Upstage document MCP
// server. It owns the shared artifact store and the log file lifecycle.
type Server struct {
	internal   *mcp.Server
	store      *artifacts.Store
	deps       *Deps
	logCleanup func() error
}

// NewServer builds a server around the given Upstage API client, with the
// builtin document tools, prompts, and resources unless options disable
// them. Configuration comes from the environment; options override it.
func NewServer(c *upstage.Client, opts ...Option) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("client is required")
	}

	cfg := &serverConfig{config: config.Load()}
	for _, opt := range opts {
		opt(cfg)
	}

	logCleanup, err := setupLogging(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	writer := output.NewWriter(cfg.config.OutputDir)
	store, err := artifacts.NewStore(
		cfg.config.OutputDir,
		cfg.config.ScanWorkers,
		cfg.config.CacheMaxItems,
		cfg.config.FreshnessThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize result store: %w", err)
	}

	toolDeps := &tools.Deps{
		Client:   c,
		Config:   cfg.config,
		Writer:   writer,
		Store:    store,
		Progress: cfg.progress,
	}

	// Same values again under the public type, for custom tool builders.
	deps := &Deps{
		Client: c,
		Config: cfg.config,
		Writer: writer,
		Store:  store,
	}

	internalOpts := []mcp.ServerOption{}
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	custom := slices.Concat(cfg.toolRegistrations, cfg.promptRegistrations, cfg.resourceRegistrations)
	for _, fn := range custom {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build MCP server: %w", err)
	}

	return &Server{
		internal:   internal,
		store:      store,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// setupLogging merges option overrides onto the environment logging config
// and installs the global logger.
func setupLogging(cfg *serverConfig) (func() error, error) {
	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	return logging.Setup(logCfg)
}

// Run serves MCP over stdio until ctx is canceled. The artifact store warms
// in the background so the first search does not pay the full scan cost.
func (s *Server) Run(ctx context.Context) error {
	go s.warmStore(ctx)
	return s.internal.Run(ctx)
}

// RunHTTP serves MCP over the streamable HTTP transport on addr until ctx
// is canceled, then drains in-flight requests.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	go s.warmStore(ctx)
	return mcp.NewHTTPServer(s.internal).Serve(ctx, addr)
}

func (s *Server) warmStore(ctx context.Context) {
	if err := s.store.Refresh(ctx); err != nil {
		slog.Debug("initial result scan failed", slog.String("error", err.Error()))
	}
}

// Close releases server resources, closing the log file if one was opened.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies custom tool builders receive.
func (s *Server) Deps() *Deps {
	return s.deps
}
