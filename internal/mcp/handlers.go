package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/logger"
	"github.com/docsmith/docsmith/internal/tools"
	"github.com/docsmith/docsmith/pkg/protocol"
	"github.com/docsmith/docsmith/pkg/version"
)

var log = logger.ForComponent("mcp")

// toolCallTimeout bounds a single generation end to end. Template reads and
// substitution are fast; anything near this budget is stuck, not slow.
const toolCallTimeout = 2 * time.Minute

type Handler struct {
	registry *tools.Registry

	mu          sync.Mutex
	initialized bool
	clientInfo  protocol.ClientInfo
}

func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{registry: registry}
}

// Handle dispatches one JSON-RPC request. It is invoked concurrently by the
// connection for each inbound message.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return h.handleListTools(), nil
	case "tools/call":
		return h.handleCallTool(ctx, req)
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		return nil, nil
	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

func (h *Handler) handleInitialize(req *jsonrpc2.Request) (any, error) {
	var params protocol.InitializeParams
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("invalid initialize params: %v", err),
			}
		}
	}

	h.mu.Lock()
	h.clientInfo = params.ClientInfo
	h.mu.Unlock()

	log.Info("client connected",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"requested_protocol", params.ProtocolVersion)

	return &protocol.InitializeResult{
		ProtocolVersion: negotiateProtocolVersion(params.ProtocolVersion),
		Capabilities: map[string]any{
			"tools": map[string]any{},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    "docsmith",
			Version: version.Version,
		},
	}, nil
}

func negotiateProtocolVersion(clientVersion string) string {
	for _, v := range protocol.SupportedProtocolVersions {
		if clientVersion == v {
			return v
		}
	}
	return protocol.ProtocolVersion
}

func (h *Handler) handleListTools() *protocol.ListToolsResult {
	list := h.registry.List()
	result := &protocol.ListToolsResult{Tools: make([]protocol.Tool, len(list))}

	for i, t := range list {
		entry := protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			entry.Title = annotated.Title()
			entry.Annotations = annotated.Annotations()
		}
		result.Tools[i] = entry
	}
	return result
}

func (h *Handler) handleCallTool(ctx context.Context, req *jsonrpc2.Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: fmt.Sprintf("tool execution panicked: %v", r),
			}
			log.Error("tool panic recovered",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	var params protocol.CallToolParams
	if req.Params == nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: "tool call params are required",
		}
	}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("invalid tool call params: %v", err),
		}
	}
	if params.Name == "" {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: "tool name is required",
		}
	}

	args := params.Arguments
	if args == nil {
		args = json.RawMessage(`{}`)
	}

	out, err := h.registry.ExecuteWithTimeout(ctx, params.Name, args, toolCallTimeout)
	if err != nil {
		// Domain failures travel as successful tool results flagged as
		// errors, so the client model can read and act on the message.
		if doc.KindOf(err) != doc.ErrUnknown {
			res := protocol.NewTextResult(err.Error())
			res.IsError = true
			return res, nil
		}
		return nil, toRPCError(err)
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: fmt.Sprintf("failed to marshal tool result: %v", err),
		}
	}
	return protocol.NewTextResult(string(payload)), nil
}

func toRPCError(err error) *jsonrpc2.Error {
	var toolErr *tools.ToolError
	if errors.As(err, &toolErr) {
		return &jsonrpc2.Error{Code: int64(toolErr.Code), Message: toolErr.Message}
	}
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
}
