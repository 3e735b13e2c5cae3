// Package pptx implements placeholder substitution for PresentationML
// templates and the slide-composition model: a template acts as a library of
// slide layouts described by JSON metadata in each slide's speaker notes.
package pptx

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/ooxml"
)

// Field kinds accepted in slide metadata. Only plain text kinds and "list"
// change rendering today; the rest are reserved and substitute as plain text.
const (
	FieldText      = "text"
	FieldParagraph = "paragraph"
	FieldList      = "list"
	FieldTable     = "table"
	FieldImage     = "image"
	FieldNumber    = "number"
	FieldDate      = "date"
)

// reservedKinds are declared in the metadata vocabulary but have no
// dedicated rendering yet. They are surfaced to callers rather than silently
// treated as implemented.
var reservedKinds = map[string]bool{
	FieldTable:  true,
	FieldImage:  true,
	FieldNumber: true,
	FieldDate:   true,
}

// FieldSpec describes one declared placeholder of a slide layout.
type FieldSpec struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	// Rendered is false for reserved kinds that currently fall back to
	// plain-text substitution.
	Rendered bool `json:"rendered"`
}

// SlideDescriptor is the catalog entry for one slide layout.
type SlideDescriptor struct {
	SlideIndex   int                  `json:"slide_index"`
	SlideType    string               `json:"slide_type"`
	Description  string               `json:"description"`
	Placeholders map[string]FieldSpec `json:"placeholders"`
}

// InertFields lists declared fields whose kind is reserved but not rendered.
func (d SlideDescriptor) InertFields() []string {
	var names []string
	for name, spec := range d.Placeholders {
		if !spec.Rendered {
			names = append(names, name)
		}
	}
	return names
}

// slideMeta is the raw notes payload before catalog normalization.
type slideMeta struct {
	SlideType    string `json:"slide_type"`
	Description  string `json:"description"`
	Placeholders map[string]struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"placeholders"`
}

// quoteNormalizer maps typographic quotes back to their ASCII forms.
// Editing tools rewrite straight quotes inside notes text, which would
// otherwise break JSON decoding. The mapping is purely syntactic: it runs on
// the serialized metadata, never on field values.
var quoteNormalizer = runes.Map(func(r rune) rune {
	switch r {
	case '“', '”':
		return '"'
	case '‘', '’':
		return '\''
	}
	return r
})

// NormalizeQuotes rewrites smart quotes to straight quotes.
func NormalizeQuotes(s string) string {
	out, _, err := transform.String(quoteNormalizer, s)
	if err != nil {
		return s
	}
	return out
}

// parseSlideMeta decodes a slide's notes text into metadata. A nil
// descriptor with nil error means the slide carries no metadata at all
// (empty notes); a decode failure returns MalformedMetadata.
func parseSlideMeta(notesText string) (*slideMeta, error) {
	trimmed := strings.TrimSpace(notesText)
	if trimmed == "" {
		return nil, nil
	}
	normalized := NormalizeQuotes(trimmed)

	var meta slideMeta
	if err := json.Unmarshal([]byte(normalized), &meta); err != nil {
		return nil, doc.MalformedMetadataf(err, "slide notes are not valid metadata")
	}
	if meta.SlideType == "" {
		return nil, doc.MalformedMetadataf(nil, "slide metadata is missing slide_type")
	}
	return &meta, nil
}

func (m *slideMeta) descriptor(slideIndex int) SlideDescriptor {
	desc := SlideDescriptor{
		SlideIndex:   slideIndex,
		SlideType:    m.SlideType,
		Description:  m.Description,
		Placeholders: make(map[string]FieldSpec, len(m.Placeholders)),
	}
	for name, spec := range m.Placeholders {
		desc.Placeholders[name] = FieldSpec{
			Type:        spec.Type,
			Description: spec.Description,
			Rendered:    !reservedKinds[spec.Type],
		}
	}
	return desc
}

// notesBodyText extracts the speaker-notes text from a notes slide part. The
// notes body is the shape whose placeholder type is "body"; other shapes on
// the notes slide (slide image, slide number) are ignored. When no body
// shape is found the whole part's text is used.
func notesBodyText(notesXML []byte) string {
	var body strings.Builder
	found := false
	ooxml.ForEachBlock(notesXML, "p:sp", func(shape string) string {
		if !strings.Contains(shape, `type="body"`) {
			return shape
		}
		found = true
		ooxml.ForEachBlock([]byte(shape), "a:p", func(block string) string {
			if body.Len() > 0 {
				body.WriteString("\n")
			}
			body.WriteString(ooxml.BlockText(block, "a:t"))
			return block
		})
		return shape
	})
	if found {
		return body.String()
	}
	var all strings.Builder
	ooxml.ForEachBlock(notesXML, "a:p", func(block string) string {
		if all.Len() > 0 {
			all.WriteString("\n")
		}
		all.WriteString(ooxml.BlockText(block, "a:t"))
		return block
	})
	return all.String()
}
