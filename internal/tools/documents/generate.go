package documents

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/docsmith/docsmith/internal/assembly"
	"github.com/docsmith/docsmith/internal/tools"
)

// GenerateTool runs one end-to-end document generation from a template.
type GenerateTool struct {
	svc *assembly.Service
}

type generateResponse struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	DocumentType  string `json:"document_type"`
	Size          int64  `json:"size"`
	DownloadURL   string `json:"download_url,omitempty"`
	ContentBase64 string `json:"content_base64,omitempty"`
}

func (t *GenerateTool) Name() string {
	return "generate_document"
}

func (t *GenerateTool) Description() string {
	return "Generate a document from a template by substituting placeholder fields; for PowerPoint, optionally compose slides from the template's slide types"
}

func (t *GenerateTool) Schema() json.RawMessage {
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
				"description": "Type of document to generate"
			},
			"fields": {
				"type": "object",
				"description": "Placeholder values keyed by placeholder name",
				"additionalProperties": true
			},
			"slides": {
				"type": "array",
				"description": "Ordered slide requests for composed PowerPoint generation",
				"items": {
					"type": "object",
					"properties": {
						"slide_type": {"type": "string"},
						"fields": {"type": "object", "additionalProperties": true}
					},
					"required": ["slide_type"]
				}
			},
			"return_type": {
				"type": "string",
				"enum": ["binary", "download_link"],
				"description": "How to return the document (default: download_link)"
			}
		},
		"required": ["template_name", "document_type"]
	}`)
}

func (t *GenerateTool) Title() string { return "Generate Document" }

func (t *GenerateTool) Annotations() map[string]bool {
	return tools.GenerationAnnotations()
}

func (t *GenerateTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var req assembly.GenerateRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, tools.NewInvalidArgumentsError(t.Name(), err)
	}
	// Over a tool transport the result is text, so a link is the useful
	// default; binary is still honored and comes back base64-encoded.
	if req.ReturnType == "" {
		req.ReturnType = assembly.ReturnDownloadLink
	}

	result, err := t.svc.Generate(ctx, &req)
	if err != nil {
		return nil, err
	}

	resp := generateResponse{
		DocumentID:   result.ID,
		Filename:     result.Filename,
		DocumentType: string(result.DocumentType),
		Size:         result.Size,
		DownloadURL:  result.DownloadURL,
	}
	if req.ReturnType == assembly.ReturnBinary {
		resp.ContentBase64 = base64.StdEncoding.EncodeToString(result.Content)
	}
	return resp, nil
}
