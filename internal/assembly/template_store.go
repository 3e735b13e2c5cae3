// Package assembly orchestrates end-to-end document generation: template
// lookup, engine dispatch, identity assignment and artifact output.
package assembly

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/docx"
	"github.com/docsmith/docsmith/internal/logger"
	"github.com/docsmith/docsmith/internal/pptx"
	"github.com/docsmith/docsmith/internal/xlsx"
)

var log = logger.ForComponent("assembly")

// engine is the per-kind substitution capability pair. The set of engines is
// closed; dispatch is a map lookup by declared kind.
type engine interface {
	Discover(data []byte) ([]string, error)
	Substitute(data []byte, fields doc.Fields) ([]byte, error)
}

var engines = map[doc.Kind]engine{
	doc.KindWord:       docx.Engine{},
	doc.KindExcel:      xlsx.Engine{},
	doc.KindPowerPoint: pptx.Engine{},
}

// TemplateInfo summarizes one template for listing calls.
type TemplateInfo struct {
	Name         string                 `json:"name"`
	DocumentType doc.Kind               `json:"document_type"`
	Description  string                 `json:"description"`
	Fields       []string               `json:"fields"`
	SlideTypes   []pptx.SlideDescriptor `json:"slide_types,omitempty"`
}

// TemplateStore is the read-only template collection: a directory holding
// one file per template, named {name}{ext}. Every call reads the directory
// or file fresh; templates may change between calls and nothing is cached.
type TemplateStore struct {
	dir    string
	ignore []string
}

func NewTemplateStore(dir string, ignorePatterns []string) *TemplateStore {
	return &TemplateStore{dir: dir, ignore: ignorePatterns}
}

// Open returns the template bytes for name+kind, or NotFound.
func (s *TemplateStore) Open(name string, kind doc.Kind) ([]byte, error) {
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+kind.Ext()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, doc.NotFoundf("template %q of type %s not found", name, kind)
		}
		return nil, fmt.Errorf("read template %q: %w", name, err)
	}
	return data, nil
}

// List scans the collection and summarizes every readable template.
// Templates that fail to parse are skipped with a warning so one corrupt
// file cannot hide the rest of the collection.
func (s *TemplateStore) List() ([]TemplateInfo, error) {
	matches, err := doublestar.Glob(os.DirFS(s.dir), "*.{docx,xlsx,pptx}")
	if err != nil {
		return nil, fmt.Errorf("scan template collection: %w", err)
	}
	sort.Strings(matches)

	infos := make([]TemplateInfo, 0, len(matches))
	for _, file := range matches {
		if s.ignored(file) {
			continue
		}
		ext := filepath.Ext(file)
		kind, ok := doc.KindForExt(ext)
		if !ok {
			continue
		}
		name := strings.TrimSuffix(file, ext)

		data, err := os.ReadFile(filepath.Join(s.dir, file))
		if err != nil {
			log.Warn("skipping unreadable template file", "file", file, "error", err)
			continue
		}
		info, err := summarize(name, kind, data)
		if err != nil {
			log.Warn("skipping template that failed to parse", "file", file, "error", err)
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func summarize(name string, kind doc.Kind, data []byte) (TemplateInfo, error) {
	fields, err := engines[kind].Discover(data)
	if err != nil {
		return TemplateInfo{}, err
	}
	info := TemplateInfo{
		Name:         name,
		DocumentType: kind,
		Description:  fmt.Sprintf("Template for %s documents", kind),
		Fields:       fields,
	}
	if kind == doc.KindPowerPoint {
		types, err := pptx.Catalog(data)
		if err != nil {
			return TemplateInfo{}, err
		}
		info.SlideTypes = types
	}
	return info, nil
}

func (s *TemplateStore) ignored(file string) bool {
	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
	}
	return false
}

func validateTemplateName(name string) error {
	if name == "" {
		return doc.Validationf("template_name is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return doc.Validationf("template_name %q must not contain path separators", name)
	}
	return nil
}
