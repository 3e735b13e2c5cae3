package doc

import "fmt"

// Kind identifies the container format of a template or generated document.
// The set is closed: dispatch happens by declared kind, never by sniffing
// content.
type Kind string

const (
	KindWord       Kind = "word"
	KindExcel      Kind = "excel"
	KindPowerPoint Kind = "powerpoint"
)

func Kinds() []Kind {
	return []Kind{KindWord, KindExcel, KindPowerPoint}
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWord, KindExcel, KindPowerPoint:
		return Kind(s), nil
	}
	return "", Validationf("unknown document type %q (expected word, excel or powerpoint)", s)
}

// Ext returns the file extension for the kind, including the dot.
func (k Kind) Ext() string {
	switch k {
	case KindWord:
		return ".docx"
	case KindExcel:
		return ".xlsx"
	case KindPowerPoint:
		return ".pptx"
	}
	return ""
}

// MediaType returns the OOXML media type served for the kind.
func (k Kind) MediaType() string {
	switch k {
	case KindWord:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case KindExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case KindPowerPoint:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	return "application/octet-stream"
}

// KindForExt maps a file extension (with dot) back to a kind.
func KindForExt(ext string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.Ext() == ext {
			return k, true
		}
	}
	return "", false
}

func (k Kind) String() string { return string(k) }

var _ fmt.Stringer = KindWord
