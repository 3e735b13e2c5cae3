package pptx

import (
	"sort"

	"github.com/docsmith/docsmith/internal/logger"
	"github.com/docsmith/docsmith/internal/ooxml"
)

var log = logger.ForComponent("pptx")

// Catalog reads every slide's notes metadata and returns the discovered
// layout descriptors in template slide order. Construction is best-effort:
// slides without notes are silently skipped and slides with malformed
// metadata are skipped with a warning, never failing the whole call.
func Catalog(data []byte) ([]SlideDescriptor, error) {
	pkg, err := open(data)
	if err != nil {
		return nil, err
	}
	refs, err := slideOrder(pkg)
	if err != nil {
		return nil, err
	}
	return catalogFrom(pkg, refs), nil
}

func catalogFrom(pkg *ooxml.Package, refs []slideRef) []SlideDescriptor {
	var descs []SlideDescriptor
	for idx, ref := range refs {
		notesPart := notesPartFor(pkg, ref.partName)
		if notesPart == "" {
			continue
		}
		notesXML, ok := pkg.Part(notesPart)
		if !ok {
			continue
		}
		meta, err := parseSlideMeta(notesBodyText(notesXML))
		if err != nil {
			log.Warn("skipping slide with malformed metadata",
				"slide_index", idx, "error", err)
			continue
		}
		if meta == nil {
			continue
		}
		descs = append(descs, meta.descriptor(idx))
	}
	return descs
}

// catalogByType keys descriptors by slide_type. On duplicate types the last
// descriptor wins; the collision is a data-quality condition worth a
// warning, not an error.
func catalogByType(descs []SlideDescriptor) map[string]SlideDescriptor {
	byType := make(map[string]SlideDescriptor, len(descs))
	for _, d := range descs {
		if prev, dup := byType[d.SlideType]; dup {
			log.Warn("duplicate slide_type in template; last descriptor wins",
				"slide_type", d.SlideType,
				"previous_slide", prev.SlideIndex,
				"winning_slide", d.SlideIndex)
		}
		byType[d.SlideType] = d
	}
	return byType
}

// typeNames returns the catalog's slide types, sorted for stable error
// messages.
func typeNames(byType map[string]SlideDescriptor) []string {
	names := make([]string, 0, len(byType))
	for name := range byType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
