package pptx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/ooxml"
)

// ResolvedSlide pairs one caller request with the catalog layout it
// instantiates.
type ResolvedSlide struct {
	SourceIndex int
	Fields      doc.Fields
	Layout      SlideDescriptor
}

// Resolve validates requests against the catalog in caller order. The same
// layout may be requested any number of times, layouts never requested are
// simply not rendered, and an unknown slide_type fails the whole call before
// any rendering happens.
func Resolve(descs []SlideDescriptor, requests []doc.SlideRequest) ([]ResolvedSlide, error) {
	byType := catalogByType(descs)
	valid := typeNames(byType)

	resolved := make([]ResolvedSlide, 0, len(requests))
	for _, req := range requests {
		layout, ok := byType[req.SlideType]
		if !ok {
			return nil, doc.UnknownSlideType(req.SlideType, valid, closestType(req.SlideType, valid))
		}
		resolved = append(resolved, ResolvedSlide{
			SourceIndex: layout.SlideIndex,
			Fields:      req.Fields,
			Layout:      layout,
		})
	}
	return resolved, nil
}

// closestType picks the best fuzzy match for a mistyped slide_type.
func closestType(requested string, valid []string) string {
	matches := fuzzy.Find(requested, valid)
	if len(matches) == 0 {
		return ""
	}
	return valid[matches[0].Index]
}

var (
	sldIDLstPattern = regexp.MustCompile(`(?s)<p:sldIdLst>.*?</p:sldIdLst>|<p:sldIdLst\s*/>`)
	// overrides for slide and notes parts are regenerated during composition
	slideOverridePattern = regexp.MustCompile(`<Override PartName="/ppt/(?:slides/slide|notesSlides/notesSlide)[0-9]+\.xml"[^>]*/>`)
)

// Compose builds a new deck from the template: for each request, the
// matching catalog slide's content is cloned, populated and appended in
// request order. The template itself is never modified. Speaker notes are
// not carried into the output; they exist to describe layouts, not to be
// presented.
func Compose(data []byte, requests []doc.SlideRequest) ([]byte, error) {
	pkg, err := open(data)
	if err != nil {
		return nil, err
	}
	refs, err := slideOrder(pkg)
	if err != nil {
		return nil, err
	}
	resolved, err := Resolve(catalogFrom(pkg, refs), requests)
	if err != nil {
		return nil, err
	}

	// Capture source slide content before dropping the template's deck.
	type source struct {
		content []byte
		rels    []ooxml.Relationship
	}
	sources := make([]source, len(refs))
	for i, ref := range refs {
		content, _ := pkg.Part(ref.partName)
		sources[i].content = content
		if relsData, ok := pkg.Part(ooxml.RelsPartName(ref.partName)); ok {
			rels, err := ooxml.DecodeRelationships(relsData)
			if err != nil {
				return nil, doc.Unreadablef(err, "slide relationships for %s are corrupt", ref.partName)
			}
			sources[i].rels = rels
		}
	}

	for _, ref := range refs {
		pkg.RemovePart(ref.partName)
		pkg.RemovePart(ooxml.RelsPartName(ref.partName))
	}
	for _, name := range pkg.Names() {
		if strings.HasPrefix(name, "ppt/notesSlides/") {
			pkg.RemovePart(name)
		}
	}

	presRelsData, _ := pkg.Part(ooxml.RelsPartName(presentationPart))
	presRels, err := ooxml.DecodeRelationships(presRelsData)
	if err != nil {
		return nil, doc.Unreadablef(err, "pptx presentation relationships are corrupt")
	}
	kept := presRels[:0:0]
	for _, r := range presRels {
		if r.Type != relTypeSlide {
			kept = append(kept, r)
		}
	}
	nextRel := ooxml.NextRelID(kept)

	var sldEntries strings.Builder
	var overrides strings.Builder
	for i, rs := range resolved {
		src := sources[rs.SourceIndex]
		newPart := fmt.Sprintf("ppt/slides/slide%d.xml", i+1)

		pkg.SetPart(newPart, renderSlide(src.content, rs.Fields, rs.Layout))

		slideRels := make([]ooxml.Relationship, 0, len(src.rels))
		for _, r := range src.rels {
			if r.Type != relTypeNotesSlide {
				slideRels = append(slideRels, r)
			}
		}
		pkg.SetPart(ooxml.RelsPartName(newPart), ooxml.EncodeRelationships(slideRels))

		relID := fmt.Sprintf("rId%d", nextRel+i)
		kept = append(kept, ooxml.Relationship{
			ID:     relID,
			Type:   relTypeSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
		fmt.Fprintf(&sldEntries, `<p:sldId id="%d" r:id="%s"/>`, 256+i, relID)
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="%s"/>`, newPart, slideContentType)
	}
	pkg.SetPart(ooxml.RelsPartName(presentationPart), ooxml.EncodeRelationships(kept))

	presXML, _ := pkg.Part(presentationPart)
	newList := "<p:sldIdLst/>"
	if sldEntries.Len() > 0 {
		newList = "<p:sldIdLst>" + sldEntries.String() + "</p:sldIdLst>"
	}
	pkg.SetPart(presentationPart, sldIDLstPattern.ReplaceAll(presXML, []byte(newList)))

	ctypes, ok := pkg.Part("[Content_Types].xml")
	if !ok {
		return nil, doc.Unreadablef(nil, "pptx is missing [Content_Types].xml")
	}
	ctypes = slideOverridePattern.ReplaceAll(ctypes, nil)
	ctypes = []byte(strings.Replace(string(ctypes), "</Types>", overrides.String()+"</Types>", 1))
	pkg.SetPart("[Content_Types].xml", ctypes)

	log.Debug("composed deck", "requested_slides", len(resolved), "catalog_slides", len(refs))
	return pkg.Bytes()
}

// renderSlide populates one cloned slide. Fields declared as "list" expand
// their paragraph into one paragraph per item, preserving the paragraph's
// bullet formatting; everything else is plain substitution.
func renderSlide(slideXML []byte, fields doc.Fields, layout SlideDescriptor) []byte {
	listFields := make(map[string][]string)
	plain := make(doc.Fields, len(fields))
	for name, v := range fields {
		if spec, ok := layout.Placeholders[name]; ok && spec.Type == FieldList {
			listFields[name] = doc.ListItems(v)
			continue
		}
		plain[name] = v
	}

	out := slideXML
	if len(listFields) > 0 {
		out = ooxml.ForEachBlock(out, "a:p", func(block string) string {
			return expandListParagraph(block, listFields)
		})
	}
	lookup := func(name string) (string, bool) {
		v, ok := plain[name]
		if !ok {
			return "", false
		}
		return doc.Stringify(v), true
	}
	return ooxml.ForEachBlock(out, "a:p", func(block string) string {
		s, _ := ooxml.SubstituteBlock(block, "a:t", lookup)
		return s
	})
}

// expandListParagraph clones the paragraph once per list item when it
// contains a list-kind placeholder.
func expandListParagraph(block string, listFields map[string][]string) string {
	text := ooxml.BlockText(block, "a:t")
	var fieldName string
	var items []string
	for _, tok := range doc.ScanTokens(text) {
		if found, ok := listFields[tok.Name]; ok {
			fieldName, items = tok.Name, found
			break
		}
	}
	if fieldName == "" {
		return block
	}

	single := func(value string) string {
		s, _ := ooxml.SubstituteBlock(block, "a:t", func(name string) (string, bool) {
			if name == fieldName {
				return value, true
			}
			return "", false
		})
		return s
	}
	if len(items) == 0 {
		return single("")
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString(single(item))
	}
	return b.String()
}
