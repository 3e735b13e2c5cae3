package documents

import (
	"context"
	"encoding/json"

	"github.com/docsmith/docsmith/internal/assembly"
	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/tools"
)

// ListTemplatesTool enumerates the template collection with the discovered
// placeholder names per template, and slide-type catalogs for presentations.
type ListTemplatesTool struct {
	svc *assembly.Service
}

func (t *ListTemplatesTool) Name() string {
	return "list_templates"
}

func (t *ListTemplatesTool) Description() string {
	return "List all available document templates with their placeholder fields and, for PowerPoint templates, their slide types"
}

func (t *ListTemplatesTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {}
	}`)
}

func (t *ListTemplatesTool) Title() string { return "List Templates" }

func (t *ListTemplatesTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ListTemplatesTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	return t.svc.ListTemplates(ctx)
}

// TemplateInfoTool returns the summary of one template by name and type.
type TemplateInfoTool struct {
	svc *assembly.Service
}

type templateInfoRequest struct {
	TemplateName string `json:"template_name"`
	DocumentType string `json:"document_type"`
}

func (t *TemplateInfoTool) Name() string {
	return "get_template_info"
}

func (t *TemplateInfoTool) Description() string {
	return "Get detailed information about a specific template: its placeholder fields and slide types"
}

func (t *TemplateInfoTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"template_name": {
				"type": "string",
				"description": "Name of the template (without extension)"
			},
			"document_type": {
				"type": "string",
				"enum": ["word", "excel", "powerpoint"],
				"description": "Type of document"
			}
		},
		"required": ["template_name", "document_type"]
	}`)
}

func (t *TemplateInfoTool) Title() string { return "Get Template Info" }

func (t *TemplateInfoTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *TemplateInfoTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var req templateInfoRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, tools.NewInvalidArgumentsError(t.Name(), err)
	}
	kind, err := doc.ParseKind(req.DocumentType)
	if err != nil {
		return nil, err
	}
	return t.svc.TemplateInfo(ctx, req.TemplateName, kind)
}

// SlideTypesTool returns the slide-type catalog of a presentation template.
type SlideTypesTool struct {
	svc *assembly.Service
}

type slideTypesRequest struct {
	TemplateName string `json:"template_name"`
}

func (t *SlideTypesTool) Name() string {
	return "get_slide_types"
}

func (t *SlideTypesTool) Description() string {
	return "List the slide types defined in a PowerPoint template's metadata, with the fields each slide type expects"
}

func (t *SlideTypesTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"template_name": {
				"type": "string",
				"description": "Name of the PowerPoint template (without extension)"
			}
		},
		"required": ["template_name"]
	}`)
}

func (t *SlideTypesTool) Title() string { return "Get Slide Types" }

func (t *SlideTypesTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *SlideTypesTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var req slideTypesRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, tools.NewInvalidArgumentsError(t.Name(), err)
	}
	types, err := t.svc.SlideTypes(ctx, req.TemplateName)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"template_name": req.TemplateName,
		"slide_types":   types,
	}, nil
}
