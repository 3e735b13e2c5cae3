// Package docx implements placeholder discovery and substitution for
// WordprocessingML templates.
package docx

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/ooxml"
)

const documentPart = "word/document.xml"

// headerFooterPattern matches the story parts besides the main document that
// can carry placeholder text.
const headerFooterPattern = "word/{header,footer}*.xml"

// Engine is the word-processing substitution engine. It is stateless; one
// instance serves concurrent generations.
type Engine struct{}

// open parses template bytes and verifies the container is a readable docx.
func open(data []byte) (*ooxml.Package, error) {
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, doc.Unreadablef(err, "template is not a readable docx container")
	}
	if _, ok := pkg.Part(documentPart); !ok {
		return nil, doc.Unreadablef(nil, "template is not a valid docx: missing %s", documentPart)
	}
	return pkg, nil
}

// storyParts returns the parts whose paragraphs are scanned: the main
// document plus every header and footer, in archive order.
func storyParts(pkg *ooxml.Package) []string {
	parts := []string{documentPart}
	for _, name := range pkg.Names() {
		if ok, _ := doublestar.Match(headerFooterPattern, name); ok {
			parts = append(parts, name)
		}
	}
	return parts
}

// Discover returns the sorted set of distinct placeholder identifiers in the
// template, including tokens fragmented across adjacent runs.
func (Engine) Discover(data []byte) ([]string, error) {
	pkg, err := open(data)
	if err != nil {
		return nil, err
	}
	var names doc.CollectNames
	for _, part := range storyParts(pkg) {
		content, ok := pkg.Part(part)
		if !ok {
			continue
		}
		ooxml.ForEachBlock(content, "w:p", func(block string) string {
			names.Add(ooxml.BlockText(block, "w:t"))
			return block
		})
	}
	return names.Sorted(), nil
}

// Substitute returns a populated copy of the template. Identifiers missing
// from fields stay literal; the input bytes are never modified.
func (Engine) Substitute(data []byte, fields doc.Fields) ([]byte, error) {
	pkg, err := open(data)
	if err != nil {
		return nil, err
	}
	lookup := func(name string) (string, bool) {
		v, ok := fields[name]
		if !ok {
			return "", false
		}
		return doc.Stringify(v), true
	}
	for _, part := range storyParts(pkg) {
		content, ok := pkg.Part(part)
		if !ok {
			continue
		}
		rewritten := ooxml.ForEachBlock(content, "w:p", func(block string) string {
			out, _ := ooxml.SubstituteBlock(block, "w:t", lookup)
			return out
		})
		pkg.SetPart(part, rewritten)
	}
	return pkg.Bytes()
}
