package pptx

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/ooxml"
)

// textPartPattern matches every part whose shapes can carry placeholder
// text: the slides themselves and their speaker notes.
const textPartPattern = "ppt/{slides/slide,notesSlides/notesSlide}*.xml"

// Engine is the presentation substitution engine for the single-layout path
// (plain fields, no slide composition). Stateless.
type Engine struct{}

func textParts(pkg *ooxml.Package) []string {
	var parts []string
	for _, name := range pkg.Names() {
		if ok, _ := doublestar.Match(textPartPattern, name); ok {
			parts = append(parts, name)
		}
	}
	return parts
}

// Discover returns the sorted set of distinct placeholder identifiers across
// every text frame of every slide, speaker notes included.
func (Engine) Discover(data []byte) ([]string, error) {
	pkg, err := open(data)
	if err != nil {
		return nil, err
	}
	var names doc.CollectNames
	for _, part := range textParts(pkg) {
		content, _ := pkg.Part(part)
		ooxml.ForEachBlock(content, "a:p", func(block string) string {
			names.Add(ooxml.BlockText(block, "a:t"))
			return block
		})
	}
	return names.Sorted(), nil
}

// Substitute replaces placeholders across the whole deck and returns the
// populated copy.
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
	for _, part := range textParts(pkg) {
		content, _ := pkg.Part(part)
		rewritten := ooxml.ForEachBlock(content, "a:p", func(block string) string {
			out, _ := ooxml.SubstituteBlock(block, "a:t", lookup)
			return out
		})
		pkg.SetPart(part, rewritten)
	}
	return pkg.Bytes()
}
