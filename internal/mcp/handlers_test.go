package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/tools"
	"github.com/docsmith/docsmith/pkg/protocol"
)

type stubTool struct {
	name string
	fn   func(ctx context.Context, input json.RawMessage) (any, error)
}

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) Description() string     { return "stub tool" }
func (s *stubTool) Schema() json.RawMessage { return json.RawMessage(`{"type": "object"}`) }
func (s *stubTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	return s.fn(ctx, input)
}

func newTestHandler(t *testing.T, stubs ...*stubTool) *Handler {
	t.Helper()
	registry := tools.NewRegistry()
	for _, s := range stubs {
		if err := registry.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	return NewHandler(registry)
}

func request(t *testing.T, method string, params any) *jsonrpc2.Request {
	t.Helper()
	req := &jsonrpc2.Request{Method: method}
	if params != nil {
		if err := req.SetParams(params); err != nil {
			t.Fatal(err)
		}
	}
	return req
}

func TestHandleInitialize(t *testing.T) {
	h := newTestHandler(t)
	result, err := h.Handle(context.Background(), nil, request(t, "initialize", protocol.InitializeParams{
		ProtocolVersion: "2024-11-05",
		ClientInfo:      protocol.ClientInfo{Name: "test-client", Version: "1.0"},
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	init := result.(*protocol.InitializeResult)
	if init.ProtocolVersion != "2024-11-05" {
		t.Errorf("negotiated version = %q", init.ProtocolVersion)
	}
	if init.ServerInfo.Name != "docsmith" {
		t.Errorf("server info = %+v", init.ServerInfo)
	}
	if _, ok := init.Capabilities["tools"]; !ok {
		t.Error("tools capability must be advertised")
	}
}

func TestHandleInitializeUnknownVersionFallsBack(t *testing.T) {
	h := newTestHandler(t)
	result, err := h.Handle(context.Background(), nil, request(t, "initialize", protocol.InitializeParams{
		ProtocolVersion: "1999-01-01",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if v := result.(*protocol.InitializeResult).ProtocolVersion; v != protocol.ProtocolVersion {
		t.Errorf("fallback version = %q, want %q", v, protocol.ProtocolVersion)
	}
}

func TestHandlePing(t *testing.T) {
	h := newTestHandler(t)
	result, err := h.Handle(context.Background(), nil, request(t, "ping", nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if m := result.(map[string]any); len(m) != 0 {
		t.Errorf("ping result = %v", m)
	}
}

func TestHandleListTools(t *testing.T) {
	h := newTestHandler(t, &stubTool{name: "demo", fn: func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	}})
	result, err := h.Handle(context.Background(), nil, request(t, "tools/list", nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	list := result.(*protocol.ListToolsResult)
	if len(list.Tools) != 1 || list.Tools[0].Name != "demo" {
		t.Errorf("tools = %+v", list.Tools)
	}
}

func TestHandleCallTool(t *testing.T) {
	h := newTestHandler(t, &stubTool{name: "echo", fn: func(_ context.Context, input json.RawMessage) (any, error) {
		var args map[string]string
		json.Unmarshal(input, &args)
		return args, nil
	}})

	result, err := h.Handle(context.Background(), nil, request(t, "tools/call", protocol.CallToolParams{
		Name:      "echo",
		Arguments: json.RawMessage(`{"k": "v"}`),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	call := result.(*protocol.CallToolResult)
	if call.IsError || len(call.Content) != 1 {
		t.Fatalf("call result = %+v", call)
	}
	var echoed map[string]string
	if err := json.Unmarshal([]byte(call.Content[0].Text), &echoed); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
	if echoed["k"] != "v" {
		t.Errorf("echoed = %v", echoed)
	}
}

func TestHandleCallToolDomainErrorIsToolResult(t *testing.T) {
	h := newTestHandler(t, &stubTool{name: "fails", fn: func(context.Context, json.RawMessage) (any, error) {
		return nil, doc.NotFoundf("template %q not found", "ghost")
	}})

	result, err := h.Handle(context.Background(), nil, request(t, "tools/call", protocol.CallToolParams{
		Name:      "fails",
		Arguments: json.RawMessage(`{}`),
	}))
	if err != nil {
		t.Fatalf("domain failures must not become protocol errors: %v", err)
	}
	call := result.(*protocol.CallToolResult)
	if !call.IsError {
		t.Error("result should be flagged as an error")
	}
}

func TestHandleCallToolUnknownName(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.Handle(context.Background(), nil, request(t, "tools/call", protocol.CallToolParams{
		Name:      "ghost",
		Arguments: json.RawMessage(`{}`),
	}))
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("expected method-not-found code, got %v", err)
	}
}

func TestHandleCallToolPanicRecovered(t *testing.T) {
	h := newTestHandler(t, &stubTool{name: "boom", fn: func(context.Context, json.RawMessage) (any, error) {
		panic("kaput")
	}})
	_, err := h.Handle(context.Background(), nil, request(t, "tools/call", protocol.CallToolParams{
		Name:      "boom",
		Arguments: json.RawMessage(`{}`),
	}))
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok || rpcErr.Code != jsonrpc2.CodeInternalError {
		t.Errorf("expected internal error from panic, got %v", err)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.Handle(context.Background(), nil, request(t, "resources/list", nil))
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("expected method-not-found, got %v", err)
	}
}
