// Package tools defines the tool abstraction exposed over MCP and the
// registry that holds them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Tool is one invocable capability. Execute receives the raw JSON arguments
// and returns a JSON-serializable result.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (any, error)
}

// AnnotatedTool optionally carries MCP tool annotations.
type AnnotatedTool interface {
	Tool
	Title() string
	Annotations() map[string]bool
}

// Registry is a thread-safe name-keyed tool collection.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = tool
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (any, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, NewToolNotFoundError(name)
	}
	return tool.Execute(ctx, input)
}

// ExecuteWithTimeout bounds one tool call. Generations are short-lived, so a
// call exceeding the budget indicates something stuck, not something slow.
func (r *Registry) ExecuteWithTimeout(ctx context.Context, name string, input json.RawMessage, timeout time.Duration) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{nil, fmt.Errorf("tool %s panicked: %v", name, rec)}
			}
		}()
		result, err := r.Execute(ctx, name, input)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("tool %s timed out after %s", name, timeout)
	case out := <-done:
		return out.result, out.err
	}
}

// List returns tools sorted by name for stable tools/list responses.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}
