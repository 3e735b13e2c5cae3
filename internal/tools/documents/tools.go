// Package documents exposes the assembly service as MCP tools.
package documents

import (
	"github.com/docsmith/docsmith/internal/assembly"
	"github.com/docsmith/docsmith/internal/tools"
)

func GetTools(svc *assembly.Service) []tools.Tool {
	return []tools.Tool{
		&ListTemplatesTool{svc: svc},
		&TemplateInfoTool{svc: svc},
		&SlideTypesTool{svc: svc},
		&GenerateTool{svc: svc},
	}
}

// RegisterAll registers every document tool on the registry.
func RegisterAll(registry *tools.Registry, svc *assembly.Service) error {
	for _, tool := range GetTools(svc) {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
