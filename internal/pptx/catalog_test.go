package pptx

import (
	"strings"
	"testing"

	"github.com/docsmith/docsmith/internal/doc"
)

const (
	titleMeta = `{"slide_type": "title", "description": "Opening slide", ` +
		`"placeholders": {"title": {"type": "text"}, "subtitle": {"type": "text"}}}`
	bulletsMeta = `{"slide_type": "bullets", "description": "Bulleted content", ` +
		`"placeholders": {"heading": {"type": "text"}, "items": {"type": "list"}}}`
	closingMeta = `{"slide_type": "closing", ` +
		`"placeholders": {"contact": {"type": "text"}}}`
)

// layoutDeck is the canonical five-slide fixture: three described layouts,
// one decorative slide without notes and one slide with prose notes.
func layoutDeck(t *testing.T) []byte {
	return buildDeck(t, []testSlide{
		{body: slidePara("{{title}}") + slidePara("{{subtitle}}"), notes: titleMeta},
		{body: slidePara("decorative divider")},
		{body: slidePara("{{heading}}") + slidePara("{{items}}"), notes: bulletsMeta},
		{body: slidePara("{{ignored}}"), notes: "remember to review this deck"},
		{body: slidePara("Contact: {{contact}}"), notes: closingMeta},
	})
}

func TestCatalog(t *testing.T) {
	descs, err := Catalog(layoutDeck(t))
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(descs) != 3 {
		t.Fatalf("expected 3 descriptors, got %d: %+v", len(descs), descs)
	}

	if descs[0].SlideType != "title" || descs[0].SlideIndex != 0 {
		t.Errorf("descriptor 0: %+v", descs[0])
	}
	if descs[1].SlideType != "bullets" || descs[1].SlideIndex != 2 {
		t.Errorf("descriptor 1: %+v", descs[1])
	}
	if descs[2].SlideType != "closing" || descs[2].SlideIndex != 4 {
		t.Errorf("descriptor 2: %+v", descs[2])
	}

	if descs[0].Description != "Opening slide" {
		t.Errorf("description = %q", descs[0].Description)
	}
	if descs[1].Placeholders["items"].Type != FieldList {
		t.Errorf("items spec = %+v", descs[1].Placeholders["items"])
	}
}

func TestCatalogEmptyDeck(t *testing.T) {
	descs, err := Catalog(buildDeck(t, []testSlide{
		{body: slidePara("no notes anywhere")},
	}))
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(descs) != 0 {
		t.Errorf("expected empty catalog, got %+v", descs)
	}
}

func TestCatalogRejectsNonPptx(t *testing.T) {
	if _, err := Catalog([]byte("not a zip")); doc.KindOf(err) != doc.ErrUnreadable {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}

func TestResolveOrderDuplicationOmission(t *testing.T) {
	descs, err := Catalog(layoutDeck(t))
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}

	// The same layout twice, another once, "closing" never; caller order is
	// authoritative.
	resolved, err := Resolve(descs, []doc.SlideRequest{
		{SlideType: "bullets", Fields: doc.Fields{"heading": "First"}},
		{SlideType: "title", Fields: doc.Fields{"title": "T"}},
		{SlideType: "bullets", Fields: doc.Fields{"heading": "Second"}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wantSources := []int{2, 0, 2}
	for i, rs := range resolved {
		if rs.SourceIndex != wantSources[i] {
			t.Errorf("slide %d: source index %d, want %d", i, rs.SourceIndex, wantSources[i])
		}
	}
	if resolved[0].Fields["heading"] != "First" || resolved[2].Fields["heading"] != "Second" {
		t.Error("fields must stay attached to their request")
	}
}

func TestResolveUnknownSlideType(t *testing.T) {
	descs, err := Catalog(layoutDeck(t))
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}

	_, err = Resolve(descs, []doc.SlideRequest{
		{SlideType: "bullets"},
		{SlideType: "bullet"},
	})
	if doc.KindOf(err) != doc.ErrUnknownSlideType {
		t.Fatalf("expected ErrUnknownSlideType, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{`"bullet"`, "bullets, closing, title", `did you mean "bullets"?`} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q should contain %q", msg, want)
		}
	}
}
