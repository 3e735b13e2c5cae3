package tools

import "fmt"

// ToolError carries a JSON-RPC error code alongside the message.
type ToolError struct {
	Code    int
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    -32601,
		Message: fmt.Sprintf("tool not found: %s", name),
	}
}

func NewInvalidArgumentsError(name string, err error) *ToolError {
	return &ToolError{
		Code:    -32602,
		Message: fmt.Sprintf("invalid arguments for tool %s: %v", name, err),
	}
}
