package assembly

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, parts [][2]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p[0])
		if err != nil {
			t.Fatalf("create %s: %v", p[0], err)
		}
		w.Write([]byte(p[1]))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeDocxTemplate(t *testing.T, dir, name, bodyText string) {
	t.Helper()
	writeZip(t, filepath.Join(dir, name+".docx"), [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"word/document.xml",
			`<w:document><w:body><w:p><w:r><w:t>` + bodyText + `</w:t></w:r></w:p></w:body></w:document>`},
	})
}

func writeXlsxTemplate(t *testing.T, dir, name, cellText string) {
	t.Helper()
	writeZip(t, filepath.Join(dir, name+".xlsx"), [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"xl/workbook.xml", "<workbook/>"},
		{"xl/sharedStrings.xml", `<sst><si><t>` + cellText + `</t></si></sst>`},
	})
}

// writePptxTemplate writes a one-layout deck whose slide carries the given
// body paragraphs and notes metadata.
func writePptxTemplate(t *testing.T, dir, name, notesJSON string, paragraphs ...string) {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, p)
	}
	notesType := "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	slideType := "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"

	parts := [][2]string{
		{"[Content_Types].xml",
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
				`<Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>` +
				`</Types>`},
		{"ppt/presentation.xml",
			`<p:presentation><p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst></p:presentation>`},
		{"ppt/_rels/presentation.xml.rels",
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
				`<Relationship Id="rId2" Type="` + slideType + `" Target="slides/slide1.xml"/>` +
				`</Relationships>`},
		{"ppt/slides/slide1.xml",
			`<p:sld><p:cSld><p:spTree>` + body.String() + `</p:spTree></p:cSld></p:sld>`},
	}
	if notesJSON != "" {
		parts = append(parts,
			[2]string{"ppt/slides/_rels/slide1.xml.rels",
				`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
					`<Relationship Id="rId1" Type="` + notesType + `" Target="../notesSlides/notesSlide1.xml"/>` +
					`</Relationships>`},
			[2]string{"ppt/notesSlides/notesSlide1.xml",
				`<p:notes><p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>` +
					`<p:txBody><a:p><a:r><a:t>` + xmlEscape(notesJSON) + `</a:t></a:r></a:p></p:txBody></p:sp></p:notes>`},
		)
	}
	writeZip(t, filepath.Join(dir, name+".pptx"), parts)
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
