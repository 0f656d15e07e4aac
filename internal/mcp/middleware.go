package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware returns middleware that logs every method call with its
// duration. Pings log at debug so long-lived sessions do not flood the log
// between document operations.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)

			level, msg := slog.LevelInfo, "method call completed"
			if method == "ping" {
				level = slog.LevelDebug
			}
			attrs := []slog.Attr{
				slog.String("method", method),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				level, msg = slog.LevelError, "method call failed"
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			slog.LogAttrs(ctx, level, msg, attrs...)

			return result, err
		}
	}
}
