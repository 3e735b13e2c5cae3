package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/docsmith/docsmith/internal/ooxml"
)

// testSlide describes one template slide for fixture decks: the slide body
// markup and the raw speaker-notes text (usually layout metadata JSON).
type testSlide struct {
	body  string // a:p blocks
	notes string // empty means no notes slide at all
}

func slidePara(text string) string {
	return `<a:p><a:r><a:t>` + ooxml.EscapeText(text) + `</a:t></a:r></a:p>`
}

// buildDeck assembles a minimal but structurally complete pptx: content
// types, presentation part with sldIdLst, relationships, slides and notes.
func buildDeck(t *testing.T, slides []testSlide) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		w.Write([]byte(content))
	}

	var overrides, sldIds strings.Builder
	presRels := []ooxml.Relationship{
		{
			ID:     "rId1",
			Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster",
			Target: "slideMasters/slideMaster1.xml",
		},
	}

	for i, s := range slides {
		n := i + 1
		slidePart := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		fmt.Fprintf(&overrides,
			`<Override PartName="/%s" ContentType="%s"/>`, slidePart, slideContentType)

		relID := fmt.Sprintf("rId%d", n+1)
		presRels = append(presRels, ooxml.Relationship{
			ID:     relID,
			Type:   relTypeSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", n),
		})
		fmt.Fprintf(&sldIds, `<p:sldId id="%d" r:id="%s"/>`, 100+n, relID)

		add(slidePart, `<p:sld><p:cSld><p:spTree>`+s.body+`</p:spTree></p:cSld></p:sld>`)

		var slideRels []ooxml.Relationship
		if s.notes != "" {
			notesPart := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n)
			fmt.Fprintf(&overrides,
				`<Override PartName="/%s" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"/>`,
				notesPart)
			add(notesPart, notesSlideXML(s.notes))
			slideRels = append(slideRels, ooxml.Relationship{
				ID:     "rId2",
				Type:   relTypeNotesSlide,
				Target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n),
			})
		}
		slideRels = append(slideRels, ooxml.Relationship{
			ID:     "rId1",
			Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout",
			Target: "../slideLayouts/slideLayout1.xml",
		})
		add(ooxml.RelsPartName(slidePart), string(ooxml.EncodeRelationships(slideRels)))
	}

	add("[Content_Types].xml",
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
			overrides.String()+`</Types>`)
	add("ppt/presentation.xml",
		`<p:presentation><p:sldMasterIdLst/><p:sldIdLst>`+sldIds.String()+`</p:sldIdLst></p:presentation>`)
	add(ooxml.RelsPartName("ppt/presentation.xml"), string(ooxml.EncodeRelationships(presRels)))
	add("ppt/slideMasters/slideMaster1.xml", `<p:sldMaster/>`)

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// notesSlideXML wraps notes text in a body placeholder shape, one a:p per
// line.
func notesSlideXML(notes string) string {
	var paras strings.Builder
	for _, line := range strings.Split(notes, "\n") {
		paras.WriteString(slidePara(line))
	}
	return `<p:notes><p:cSld><p:spTree>` +
		`<p:sp><p:nvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr></p:sp>` +
		`<p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>` +
		`<p:txBody>` + paras.String() + `</p:txBody></p:sp>` +
		`</p:spTree></p:cSld></p:notes>`
}

// deckSlideTexts returns the concatenated a:t text of each slide part of a
// composed deck, in deck order.
func deckSlideTexts(t *testing.T, data []byte) []string {
	t.Helper()
	pkg, err := ooxml.Open(data)
	if err != nil {
		t.Fatalf("open deck: %v", err)
	}
	refs, err := slideOrder(pkg)
	if err != nil {
		t.Fatalf("slide order: %v", err)
	}
	texts := make([]string, len(refs))
	for i, ref := range refs {
		content, ok := pkg.Part(ref.partName)
		if !ok {
			t.Fatalf("missing slide part %s", ref.partName)
		}
		var text strings.Builder
		ooxml.ForEachBlock(content, "a:p", func(block string) string {
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(ooxml.BlockText(block, "a:t"))
			return block
		})
		texts[i] = text.String()
	}
	return texts
}
