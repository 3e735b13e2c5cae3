// Package protocol defines the MCP wire types exchanged over JSON-RPC 2.0.
package protocol

import "encoding/json"

// ProtocolVersion is the MCP revision this server speaks by default.
const ProtocolVersion = "2024-11-05"

// SupportedProtocolVersions lists revisions accepted during negotiation.
var SupportedProtocolVersions = []string{"2024-11-05", "2025-03-26"}

type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Title       string          `json:"title,omitempty"`
	Annotations map[string]bool `json:"annotations,omitempty"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeParams struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ClientInfo      ClientInfo `json:"clientInfo"`
}

type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// TextContent is the single content block type this server emits: tool
// results serialized as JSON text.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

func NewTextResult(text string) *CallToolResult {
	return &CallToolResult{Content: []TextContent{{Type: "text", Text: text}}}
}
