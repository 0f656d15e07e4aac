package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/config"
	"github.com/upstage-ai/upstage-mcp/internal/mcp/tools"
)

// protocolVersion is the newest MCP revision this server speaks. The stdio
// transport negotiates through the SDK; the HTTP transport negotiates here.
const protocolVersion = "2025-06-18"

var supportedProtocolVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
}

// JSON-RPC 2.0 error codes. -32002 is the MCP resource-not-found code.
const (
	codeInvalidRequest   = -32600
	codeMethodNotFound   = -32601
	codeInvalidParams    = -32602
	codeInternalError    = -32603
	codeResourceNotFound = -32002
)

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// jsonrpcResponse always emits the id field: null when the request id could
// not be recovered, the echoed id otherwise.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// toolDescriptor is the tools/list wire form of one registry entry.
type toolDescriptor struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	InputSchema  *jsonschema.Schema `json:"inputSchema"`
	OutputSchema *jsonschema.Schema `json:"outputSchema,omitempty"`
}

// Dispatch decodes and routes one JSON-RPC message. It is transport
// agnostic: callers hand in raw bytes and serialize the returned response
// themselves. A nil response means the message was a notification and gets
// no reply.
func (s *Server) Dispatch(ctx context.Context, body []byte) *jsonrpcResponse {
	var req jsonrpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errorResponse(nil, codeInvalidRequest, "invalid JSON-RPC envelope: "+err.Error())
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, `request must carry jsonrpc "2.0" and a method`)
	}

	if len(req.ID) == 0 {
		slog.Debug("notification received", slog.String("method", req.Method))
		return nil
	}

	return s.route(ctx, &req)
}

// route runs the method handler under a recover so a panicking handler
// surfaces as a JSON-RPC internal error instead of tearing down the
// transport.
func (s *Server) route(ctx context.Context, req *jsonrpcRequest) (resp *jsonrpcResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("method handler panicked",
				slog.String("method", req.Method),
				slog.Any("panic", r))
			resp = errorResponse(req.ID, codeInternalError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return resultResponse(req.ID, struct{}{})
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "prompts/list":
		return s.handlePromptsList(req)
	case "prompts/get":
		return s.handlePromptsGet(ctx, req)
	case "resources/list":
		return resultResponse(req.ID, map[string]any{"resources": concreteResources()})
	case "resources/templates/list":
		return resultResponse(req.ID, map[string]any{"resourceTemplates": resourceTemplates()})
	case "resources/read":
		return s.handleResourcesRead(ctx, req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *jsonrpcRequest) *jsonrpcResponse {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
		}
	}

	negotiated := protocolVersion
	if supportedProtocolVersions[params.ProtocolVersion] {
		negotiated = params.ProtocolVersion
	}

	return resultResponse(req.ID, map[string]any{
		"protocolVersion": negotiated,
		"capabilities": map[string]any{
			"tools":     map[string]any{"listChanged": false},
			"prompts":   map[string]any{"listChanged": false},
			"resources": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": config.Version,
		},
	})
}

func (s *Server) handleToolsList(req *jsonrpcRequest) *jsonrpcResponse {
	var entries []*tools.Entry
	if s.registry != nil {
		entries = s.registry.Entries()
	}
	descriptors := make([]toolDescriptor, len(entries))
	for i, e := range entries {
		descriptors[i] = toolDescriptor{
			Name:         e.Name,
			Description:  e.Description,
			InputSchema:  e.InputSchema,
			OutputSchema: e.OutputSchema,
		}
	}
	return resultResponse(req.ID, map[string]any{"tools": descriptors})
}

func (s *Server) handleToolsCall(ctx context.Context, req *jsonrpcRequest) *jsonrpcResponse {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if len(req.Params) == 0 {
		return errorResponse(req.ID, codeInvalidParams, "tools/call requires params")
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}
	if params.Name == "" {
		return errorResponse(req.ID, codeInvalidParams, "tools/call params.name is required")
	}

	if s.registry == nil {
		return errorResponse(req.ID, codeMethodNotFound, "unknown tool: "+params.Name)
	}
	res, ok := s.registry.Call(ctx, params.Name, params.Arguments)
	if !ok {
		return errorResponse(req.ID, codeMethodNotFound, "unknown tool: "+params.Name)
	}
	return resultResponse(req.ID, res)
}

func (s *Server) handlePromptsList(req *jsonrpcRequest) *jsonrpcResponse {
	prompts := make([]*sdkmcp.Prompt, len(s.promptEntries))
	for i, e := range s.promptEntries {
		prompts[i] = e.Prompt
	}
	return resultResponse(req.ID, map[string]any{"prompts": prompts})
}

func (s *Server) handlePromptsGet(ctx context.Context, req *jsonrpcRequest) *jsonrpcResponse {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if len(req.Params) == 0 {
		return errorResponse(req.ID, codeInvalidParams, "prompts/get requires params")
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid prompts/get params: "+err.Error())
	}

	for _, e := range s.promptEntries {
		if e.Prompt.Name != params.Name {
			continue
		}
		res, err := e.Handler(ctx, &sdkmcp.GetPromptRequest{
			Params: &sdkmcp.GetPromptParams{
				Name:      params.Name,
				Arguments: params.Arguments,
			},
		})
		if err != nil {
			return errorResponse(req.ID, codeInternalError, err.Error())
		}
		return resultResponse(req.ID, res)
	}
	return errorResponse(req.ID, codeInvalidParams, "unknown prompt: "+params.Name)
}

func (s *Server) handleResourcesRead(ctx context.Context, req *jsonrpcRequest) *jsonrpcResponse {
	var params struct {
		URI string `json:"uri"`
	}
	if len(req.Params) == 0 {
		return errorResponse(req.ID, codeInvalidParams, "resources/read requires params")
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid resources/read params: "+err.Error())
	}

	res, err := s.ReadResource(ctx, params.URI)
	if err != nil {
		var notFound *resourceNotFoundError
		if errors.As(err, &notFound) {
			return errorResponse(req.ID, codeResourceNotFound, err.Error())
		}
		return errorResponse(req.ID, codeInvalidParams, err.Error())
	}
	return resultResponse(req.ID, res)
}

func resultResponse(id json.RawMessage, result any) *jsonrpcResponse {
	return &jsonrpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) *jsonrpcResponse {
	return &jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &jsonrpcError{Code: code, Message: message},
	}
}
