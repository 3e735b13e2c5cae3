package assembly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/pptx"
)

// GenerateRequest is the wire shape of one generation call. fields drives
// word/excel generation and single-layout powerpoint use; slides drives
// composed powerpoint generation, and takes precedence when both are given.
type GenerateRequest struct {
	TemplateName string             `json:"template_name" validate:"required"`
	DocumentType string             `json:"document_type" validate:"required,oneof=word excel powerpoint"`
	Fields       doc.Fields         `json:"fields,omitempty"`
	Slides       []doc.SlideRequest `json:"slides,omitempty"`
	ReturnType   string             `json:"return_type,omitempty" validate:"omitempty,oneof=binary download_link"`
}

const (
	ReturnBinary       = "binary"
	ReturnDownloadLink = "download_link"
)

// GenerateResult is one finished generation. Content is set in binary mode,
// DownloadURL in download_link mode.
type GenerateResult struct {
	ID           string   `json:"document_id"`
	Filename     string   `json:"filename"`
	DocumentType doc.Kind `json:"document_type"`
	Size         int64    `json:"size"`
	DownloadURL  string   `json:"download_url,omitempty"`
	Content      []byte   `json:"-"`
}

// Service is the document assembly orchestrator. It is stateless per call:
// every generation reads the template fresh and produces an independent
// artifact, so concurrent calls need no coordination.
type Service struct {
	templates *TemplateStore
	outputs   *OutputStore
	baseURL   string
	validate  *validator.Validate

	now   func() time.Time
	newID func() string
}

func NewService(templates *TemplateStore, outputs *OutputStore, baseURL string) *Service {
	return &Service{
		templates: templates,
		outputs:   outputs,
		baseURL:   baseURL,
		validate:  validator.New(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ListTemplates summarizes the whole template collection, scanning it fresh.
func (s *Service) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	return s.templates.List()
}

// TemplateInfo summarizes one template by name and kind.
func (s *Service) TemplateInfo(ctx context.Context, templateName string, kind doc.Kind) (*TemplateInfo, error) {
	data, err := s.templates.Open(templateName, kind)
	if err != nil {
		return nil, err
	}
	info, err := summarize(templateName, kind, data)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// SlideTypes returns the slide-type catalog of a presentation template.
func (s *Service) SlideTypes(ctx context.Context, templateName string) ([]pptx.SlideDescriptor, error) {
	data, err := s.templates.Open(templateName, doc.KindPowerPoint)
	if err != nil {
		return nil, err
	}
	return pptx.Catalog(data)
}

// OpenArtifact returns a stored artifact's bytes by filename.
func (s *Service) OpenArtifact(ctx context.Context, filename string) ([]byte, error) {
	return s.outputs.Open(filename)
}

// Generate runs one end-to-end generation. A failure at any stage aborts the
// whole call with the originating condition; nothing is retried and no
// partial artifact is published.
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	kind, err := doc.ParseKind(req.DocumentType)
	if err != nil {
		return nil, err
	}

	data, err := s.templates.Open(req.TemplateName, kind)
	if err != nil {
		return nil, err
	}

	// Identity is assigned before any output I/O: the id-derived filename
	// is the collision-avoidance mechanism for concurrent writes.
	id := s.newID()
	createdAt := s.now().UTC()
	filename := fmt.Sprintf("%s_%s_%s%s",
		req.TemplateName, createdAt.Format("20060102150405"), id[:8], kind.Ext())

	content, err := s.render(kind, data, req)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		ID:           id,
		Filename:     filename,
		DocumentType: kind,
		Size:         int64(len(content)),
	}

	if req.ReturnType == ReturnDownloadLink {
		art := &Artifact{
			ID:        id,
			Filename:  filename,
			Template:  req.TemplateName,
			Kind:      kind,
			Size:      int64(len(content)),
			CreatedAt: createdAt,
			Content:   content,
		}
		if err := s.outputs.Save(art); err != nil {
			return nil, err
		}
		result.DownloadURL = s.baseURL + "/api/download/" + filename
	} else {
		result.Content = content
	}

	log.Info("document generated",
		"template", req.TemplateName,
		"document_type", kind,
		"document_id", id,
		"filename", filename,
		"size", result.Size,
		"return_type", returnTypeOrDefault(req.ReturnType))
	return result, nil
}

func (s *Service) render(kind doc.Kind, data []byte, req *GenerateRequest) ([]byte, error) {
	if kind == doc.KindPowerPoint && len(req.Slides) > 0 {
		return pptx.Compose(data, req.Slides)
	}
	fields := req.Fields
	if fields == nil {
		fields = doc.Fields{}
	}
	return engines[kind].Substitute(data, fields)
}

func (s *Service) validateRequest(req *GenerateRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return doc.Validationf("invalid request: field %s failed %q validation", first.Field(), first.Tag())
		}
		return doc.Validationf("invalid request: %v", err)
	}
	if err := validateTemplateName(req.TemplateName); err != nil {
		return err
	}
	if req.DocumentType == string(doc.KindPowerPoint) && req.Fields == nil && req.Slides == nil {
		return doc.Validationf("powerpoint generation requires either fields or slides")
	}
	return nil
}

func returnTypeOrDefault(rt string) string {
	if rt == "" {
		return ReturnBinary
	}
	return rt
}
