// Package xlsx implements placeholder discovery and substitution for
// SpreadsheetML templates. Cell text lives either in the shared-string table
// or inline in the sheet; both are scanned, and rich-text shared strings are
// treated as run-fragmented blocks.
package xlsx

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/ooxml"
)

const (
	workbookPart      = "xl/workbook.xml"
	sharedStringsPart = "xl/sharedStrings.xml"
	worksheetPattern  = "xl/worksheets/sheet*.xml"
)

// Engine is the spreadsheet substitution engine. Stateless.
type Engine struct{}

func open(data []byte) (*ooxml.Package, error) {
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, doc.Unreadablef(err, "template is not a readable xlsx container")
	}
	if _, ok := pkg.Part(workbookPart); !ok {
		return nil, doc.Unreadablef(nil, "template is not a valid xlsx: missing %s", workbookPart)
	}
	return pkg, nil
}

func worksheetParts(pkg *ooxml.Package) []string {
	var parts []string
	for _, name := range pkg.Names() {
		if ok, _ := doublestar.Match(worksheetPattern, name); ok {
			parts = append(parts, name)
		}
	}
	return parts
}

// Discover returns the sorted set of distinct placeholder identifiers found
// in shared strings and inline cell values.
func (Engine) Discover(data []byte) ([]string, error) {
	pkg, err := open(data)
	if err != nil {
		return nil, err
	}
	var names doc.CollectNames
	if shared, ok := pkg.Part(sharedStringsPart); ok {
		ooxml.ForEachBlock(shared, "si", func(block string) string {
			names.Add(ooxml.BlockText(block, "t"))
			return block
		})
	}
	for _, part := range worksheetParts(pkg) {
		content, _ := pkg.Part(part)
		ooxml.ForEachBlock(content, "is", func(block string) string {
			names.Add(ooxml.BlockText(block, "t"))
			return block
		})
	}
	return names.Sorted(), nil
}

// Substitute returns a populated copy of the template.
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
	if shared, ok := pkg.Part(sharedStringsPart); ok {
		rewritten := ooxml.ForEachBlock(shared, "si", func(block string) string {
			out, _ := ooxml.SubstituteBlock(block, "t", lookup)
			return out
		})
		pkg.SetPart(sharedStringsPart, rewritten)
	}
	for _, part := range worksheetParts(pkg) {
		content, _ := pkg.Part(part)
		rewritten := ooxml.ForEachBlock(content, "is", func(block string) string {
			out, _ := ooxml.SubstituteBlock(block, "t", lookup)
			return out
		})
		pkg.SetPart(part, rewritten)
	}
	return pkg.Bytes()
}
