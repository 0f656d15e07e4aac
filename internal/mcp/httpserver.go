package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/upstage-ai/upstage-mcp/internal/config"
)

// sessionHeader is echoed back when the caller supplies it. Each POST is
// stateless; there is no server-side session binding.
const sessionHeader = "Mcp-Session-Id"

// maxRequestBody bounds a single JSON-RPC request body. Tool arguments are
// paths and schemas, never document content, so 10 MiB is far above any
// legitimate request.
const maxRequestBody = 10 << 20

// HTTPServer binds the shared dispatch table to a streamable HTTP endpoint.
type HTTPServer struct {
	server    *Server
	keepalive time.Duration
}

// NewHTTPServer wraps s for serving over HTTP.
func NewHTTPServer(s *Server) *HTTPServer {
	keepalive := s.deps.Config.HTTPKeepalive
	if keepalive <= 0 {
		keepalive = config.DefaultHTTPKeepaliveMs * time.Millisecond
	}
	return &HTTPServer{server: s, keepalive: keepalive}
}

// Handler returns the full route table wrapped in the CORS layer.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", h.handleMCP)
	mux.HandleFunc("/health", h.handleHealth)
	return h.withCORS(mux)
}

// Serve runs the HTTP transport until ctx is cancelled, then drains
// in-flight requests. No write timeout is set: the event stream stays open
// until the client leaves.
func (h *HTTPServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	slog.Info("HTTP transport listening",
		slog.String("addr", addr),
		slog.String("version", config.Version))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// withCORS applies the permissive CORS policy: the request origin is echoed
// on every response and OPTIONS short-circuits with 200. The session header
// echo also lives here so it covers every response.
func (h *HTTPServer) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, "+sessionHeader)

		if sid := r.Header.Get(sessionHeader); sid != "" {
			w.Header().Set(sessionHeader, sid)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleStream(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePost carries the whole request/response cycle: tool responses never
// ride the event stream.
func (h *HTTPServer) handlePost(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if !strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/event-stream") {
		http.Error(w, "Accept must include application/json or text/event-stream", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := h.server.Dispatch(r.Context(), body)
	if resp == nil {
		// Notification: acknowledge without a body.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("writing JSON-RPC response", slog.String("error", err.Error()))
	}
}

// handleStream opens the one-way keep-alive event stream. It never carries
// tool-call responses.
func (h *HTTPServer) handleStream(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		http.Error(w, "Accept must include text/event-stream", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n"); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleHealth is the liveness probe. It reports 200 regardless of API-key
// validity.
func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"transport": "http",
		"version":   config.Version,
	})
}
