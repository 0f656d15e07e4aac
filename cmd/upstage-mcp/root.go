package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/pkg/mcpsrv"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

const defaultPort = 3000

var (
	httpMode bool
	httpPort int
)

var rootCmd = &cobra.Command{
	Use:   "upstage-mcp",
	Short: "MCP server for the Upstage document AI pipelines",
	Long: `upstage-mcp exposes the Upstage document parsing, information extraction,
schema generation, and classification APIs as MCP tools.

The server speaks MCP over stdio by default; pass --http to serve the same
tools over a streamable HTTP endpoint instead.

Configuration is read from environment variables (see .env support):
  UPSTAGE_API_KEY     Upstage API key (required)
  UPSTAGE_OUTPUT_DIR  where results are saved (default: user config dir)
  LOG_LEVEL           debug, info, warn, error (default: info)
  LOG_FILE            rotating log file path (default: stderr only)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().BoolVar(&httpMode, "http", false, "serve over HTTP instead of stdio")
	rootCmd.Flags().IntVar(&httpPort, "port", defaultPort, "HTTP listen port (only applies with --http)")
}

func runServer(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("configuration invalid", "error", err)
		return err
	}

	client := upstage.New(cfg.APIKey,
		upstage.WithBaseURL(cfg.BaseURL),
		upstage.WithRequestTimeout(cfg.RequestTimeout),
		upstage.WithMaxAttempts(cfg.MaxAttempts),
		upstage.WithRetryDelays(cfg.RetryBaseDelay, cfg.RetryMaxDelay),
	)

	// Create MCP server with all builtin tools, prompts, and resources
	server, err := mcpsrv.NewServer(client)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		return err
	}
	defer server.Close()

	if httpMode {
		addr := fmt.Sprintf(":%d", httpPort)
		slog.Info("starting upstage MCP server on HTTP", "addr", addr)
		err = server.RunHTTP(ctx, addr)
	} else {
		slog.Info("starting upstage MCP server on stdio")
		err = server.Run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}
