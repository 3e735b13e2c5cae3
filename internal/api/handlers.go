package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/docsmith/docsmith/internal/assembly"
	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/pkg/version"
)

type Handler struct {
	svc *assembly.Service
}

func NewHandler(svc *assembly.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
	})
}

// ListTemplates returns every template with its placeholder fields.
func (h *Handler) ListTemplates(c *gin.Context) {
	infos, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": infos})
}

// TemplateInfo returns one template's summary. document_type is a required
// query parameter because template names are unique only per extension.
func (h *Handler) TemplateInfo(c *gin.Context) {
	kind, err := doc.ParseKind(c.Query("document_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.svc.TemplateInfo(c.Request.Context(), c.Param("name"), kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// SlideTypes returns the slide-type catalog of a presentation template.
func (h *Handler) SlideTypes(c *gin.Context) {
	name := c.Param("name")
	types, err := h.svc.SlideTypes(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"template_name": name,
		"slide_types":   types,
	})
}

// Generate runs one generation. binary mode streams the document back;
// download_link mode stores it and returns metadata with a URL.
func (h *Handler) Generate(c *gin.Context) {
	var req assembly.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.ReturnType == "" {
		req.ReturnType = assembly.ReturnBinary
	}

	result, err := h.svc.Generate(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.ReturnType == assembly.ReturnBinary {
		c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
		c.Data(http.StatusOK, result.DocumentType.MediaType(), result.Content)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Download streams a previously generated artifact by filename.
func (h *Handler) Download(c *gin.Context) {
	filename := c.Param("filename")
	content, err := h.svc.OpenArtifact(c.Request.Context(), filename)
	if err != nil {
		writeError(c, err)
		return
	}

	mediaType := "application/octet-stream"
	if kind, ok := doc.KindForExt(filepath.Ext(filename)); ok {
		mediaType = kind.MediaType()
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, mediaType, content)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch doc.KindOf(err) {
	case doc.ErrNotFound:
		status = http.StatusNotFound
	case doc.ErrValidation:
		status = http.StatusBadRequest
	case doc.ErrUnknownSlideType, doc.ErrMalformedMetadata, doc.ErrUnreadable:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
