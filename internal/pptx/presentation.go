package pptx

import (
	"path"
	"regexp"
	"strings"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/ooxml"
)

const (
	presentationPart = "ppt/presentation.xml"

	relTypeSlide      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeNotesSlide = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"

	slideContentType = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
)

var sldIDPattern = regexp.MustCompile(`<p:sldId\s[^>]*?r:id="([^"]+)"[^>]*/?>`)

// slideRef ties one deck position to its slide part.
type slideRef struct {
	relID    string
	partName string
}

func open(data []byte) (*ooxml.Package, error) {
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, doc.Unreadablef(err, "template is not a readable pptx container")
	}
	if _, ok := pkg.Part(presentationPart); !ok {
		return nil, doc.Unreadablef(nil, "template is not a valid pptx: missing %s", presentationPart)
	}
	return pkg, nil
}

// slideOrder resolves the deck's slide parts in presentation order by
// walking p:sldIdLst through the presentation relationships.
func slideOrder(pkg *ooxml.Package) ([]slideRef, error) {
	presXML, _ := pkg.Part(presentationPart)
	relsData, ok := pkg.Part(ooxml.RelsPartName(presentationPart))
	if !ok {
		return nil, doc.Unreadablef(nil, "pptx is missing presentation relationships")
	}
	rels, err := ooxml.DecodeRelationships(relsData)
	if err != nil {
		return nil, doc.Unreadablef(err, "pptx presentation relationships are corrupt")
	}
	targets := make(map[string]string, len(rels))
	for _, r := range rels {
		targets[r.ID] = resolveTarget("ppt", r.Target)
	}

	var refs []slideRef
	for _, m := range sldIDPattern.FindAllStringSubmatch(string(presXML), -1) {
		relID := m[1]
		part, ok := targets[relID]
		if !ok {
			return nil, doc.Unreadablef(nil, "pptx slide relationship %s is missing", relID)
		}
		refs = append(refs, slideRef{relID: relID, partName: part})
	}
	return refs, nil
}

// notesPartFor returns the notes slide part attached to a slide, or "" when
// the slide has no notes.
func notesPartFor(pkg *ooxml.Package, slidePart string) string {
	relsData, ok := pkg.Part(ooxml.RelsPartName(slidePart))
	if !ok {
		return ""
	}
	rels, err := ooxml.DecodeRelationships(relsData)
	if err != nil {
		return ""
	}
	base := path.Dir(slidePart)
	for _, r := range rels {
		if r.Type == relTypeNotesSlide {
			return resolveTarget(base, r.Target)
		}
	}
	return ""
}

// resolveTarget resolves a relationship target against the directory of the
// source part.
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}
