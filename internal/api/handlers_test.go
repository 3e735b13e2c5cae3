package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith/docsmith/internal/assembly"
)

func writeDocxTemplate(t *testing.T, path, bodyText string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"word/document.xml",
			`<w:document><w:body><w:p><w:r><w:t>` + bodyText + `</w:t></w:r></w:p></w:body></w:document>`},
	} {
		w, _ := zw.Create(part[0])
		w.Write([]byte(part[1]))
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	templatesDir := t.TempDir()
	outDir := t.TempDir()
	writeDocxTemplate(t, filepath.Join(templatesDir, "letter.docx"), "Dear {{client_name}}")

	outputs, err := assembly.NewOutputStore(outDir, filepath.Join(outDir, "artifacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { outputs.Close() })

	svc := assembly.NewService(assembly.NewTemplateStore(templatesDir, nil), outputs, "http://localhost:8080")
	return Setup(svc)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestListTemplatesEndpoint(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Templates []assembly.TemplateInfo `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Templates, 1)
	assert.Equal(t, "letter", body.Templates[0].Name)
	assert.Equal(t, []string{"client_name"}, body.Templates[0].Fields)
}

func TestTemplateInfoEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/templates/letter?document_type=word", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info assembly.TemplateInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "letter", info.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/templates/letter", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "document_type is required")

	rec = doJSON(t, router, http.MethodGet, "/api/templates/ghost?document_type=word", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSlideTypesEndpointForNonPresentation(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/api/templates/letter/slides", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no pptx by that name")
}

func TestGenerateBinaryEndpoint(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/api/generate", map[string]any{
		"template_name": "letter",
		"document_type": "word",
		"fields":        map[string]any{"client_name": "Acme"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, rec.Header().Get("Content-Type"), "wordprocessingml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "response should be a zip container")
}

func TestGenerateDownloadLinkAndFetch(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/generate", map[string]any{
		"template_name": "letter",
		"document_type": "word",
		"fields":        map[string]any{"client_name": "Acme"},
		"return_type":   "download_link",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Filename    string `json:"filename"`
		DownloadURL string `json:"download_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Filename)
	assert.Equal(t, "http://localhost:8080/api/download/"+result.Filename, result.DownloadURL)

	fetch := doJSON(t, router, http.MethodGet, "/api/download/"+result.Filename, nil)
	require.Equal(t, http.StatusOK, fetch.Code)
	assert.True(t, strings.HasPrefix(fetch.Body.String(), "PK"))
}

func TestGenerateErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/generate", map[string]any{
		"template_name": "ghost",
		"document_type": "word",
		"fields":        map[string]any{},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/generate", map[string]any{
		"template_name": "letter",
		"document_type": "pdf",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/generate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty body")
}

func TestDownloadMissingArtifact(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/api/download/nope.docx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
