package ooxml

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/docsmith/docsmith/internal/doc"
)

// A placeholder token is routinely split across several text elements of one
// block: interactive editors fragment runs silently (spell checking, partial
// reformatting, smart quotes). Scanning elements in isolation would miss
// those tokens, so substitution always works on the concatenated block text
// and maps results back to the source elements.

// textElem is one text element (<w:t>, <a:t>, <t>) inside a block.
type textElem struct {
	start, end int    // byte span of the whole element within the block
	attrs      string // raw attribute text including leading space, "" if none
	text       string // unescaped content
}

var blockPatterns sync.Map // block tag -> *regexp.Regexp

func blockPattern(tag string) *regexp.Regexp {
	if re, ok := blockPatterns.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?s)<` + tag + `(?:\s[^>]*)?>.*?</` + tag + `>`)
	blockPatterns.Store(tag, re)
	return re
}

// ForEachBlock rewrites every block delimited by blockTag in xmlData through
// fn and returns the resulting document. fn receives the complete block
// markup and returns its replacement.
func ForEachBlock(xmlData []byte, blockTag string, fn func(block string) string) []byte {
	re := blockPattern(blockTag)
	return re.ReplaceAllFunc(xmlData, func(block []byte) []byte {
		return []byte(fn(string(block)))
	})
}

// scanTextElems locates every text element of the given tag inside block.
func scanTextElems(block, tag string) []textElem {
	open := "<" + tag
	closing := "</" + tag + ">"
	var elems []textElem

	for i := 0; i < len(block); {
		idx := strings.Index(block[i:], open)
		if idx < 0 {
			break
		}
		start := i + idx
		rest := block[start+len(open):]
		// The next byte must terminate the tag name, otherwise this is a
		// longer element name sharing the prefix (w:t vs w:tab).
		if len(rest) == 0 || (rest[0] != ' ' && rest[0] != '>' && rest[0] != '/' && rest[0] != '\t' && rest[0] != '\n') {
			i = start + len(open)
			continue
		}
		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			break
		}
		attrs := rest[:gt]
		afterOpen := start + len(open) + gt + 1

		if strings.HasSuffix(attrs, "/") {
			// self-closing, empty text
			elems = append(elems, textElem{
				start: start,
				end:   afterOpen,
				attrs: strings.TrimSuffix(attrs, "/"),
			})
			i = afterOpen
			continue
		}

		endIdx := strings.Index(block[afterOpen:], closing)
		if endIdx < 0 {
			break
		}
		elems = append(elems, textElem{
			start: start,
			end:   afterOpen + endIdx + len(closing),
			attrs: attrs,
			text:  UnescapeText(block[afterOpen : afterOpen+endIdx]),
		})
		i = afterOpen + endIdx + len(closing)
	}
	return elems
}

// BlockText returns the concatenated text of every text element of the given
// tag inside block.
func BlockText(block, tag string) string {
	var b strings.Builder
	for _, e := range scanTextElems(block, tag) {
		b.WriteString(e.text)
	}
	return b.String()
}

// SubstituteBlock replaces placeholder tokens within one block. lookup
// returns the replacement for an identifier, or false to leave the token
// literal. Reports whether anything changed.
func SubstituteBlock(block, tag string, lookup func(name string) (string, bool)) (string, bool) {
	elems := scanTextElems(block, tag)
	if len(elems) == 0 {
		return block, false
	}

	offsets := make([]int, len(elems)+1)
	var concat strings.Builder
	for i, e := range elems {
		offsets[i] = concat.Len()
		concat.WriteString(e.text)
	}
	full := concat.String()
	offsets[len(elems)] = len(full)

	type repl struct {
		doc.Token
		value string
	}
	var repls []repl
	for _, tok := range doc.ScanTokens(full) {
		if v, ok := lookup(tok.Name); ok {
			repls = append(repls, repl{Token: tok, value: v})
		}
	}
	if len(repls) == 0 {
		return block, false
	}

	// Rebuild each element's text: characters belonging to a replaced token
	// are dropped, and the replacement value lands in the element where the
	// token starts.
	newTexts := make([]string, len(elems))
	changed := make([]bool, len(elems))
	for i := range elems {
		gs, ge := offsets[i], offsets[i+1]
		var b strings.Builder
		cur := gs
		for _, r := range repls {
			if r.End <= gs || r.Start >= ge {
				continue
			}
			if r.Start >= gs {
				b.WriteString(full[cur:r.Start])
				b.WriteString(r.value)
			}
			// skip the token's characters that fall inside this element
			if r.End < ge {
				cur = r.End
			} else {
				cur = ge
			}
		}
		b.WriteString(full[cur:ge])
		newTexts[i] = b.String()
		changed[i] = newTexts[i] != elems[i].text
	}

	var out strings.Builder
	prev := 0
	for i, e := range elems {
		out.WriteString(block[prev:e.start])
		if changed[i] {
			out.WriteString(renderTextElem(tag, e.attrs, newTexts[i]))
		} else {
			out.WriteString(block[e.start:e.end])
		}
		prev = e.end
	}
	out.WriteString(block[prev:])
	return out.String(), true
}

// renderTextElem serializes a text element with new content, preserving the
// original attributes. WordprocessingML and SpreadsheetML collapse edge
// whitespace unless xml:space="preserve" is set.
func renderTextElem(tag, attrs, text string) string {
	if needsSpacePreserve(tag, text) && !strings.Contains(attrs, "xml:space") {
		attrs += ` xml:space="preserve"`
	}
	return "<" + tag + attrs + ">" + EscapeText(text) + "</" + tag + ">"
}

func needsSpacePreserve(tag, text string) bool {
	if tag != "w:t" && tag != "t" {
		return false
	}
	return text != strings.TrimSpace(text)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeText escapes character data for XML element content.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// UnescapeText decodes the predefined XML entities plus numeric character
// references. Unknown entities pass through untouched.
func UnescapeText(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteString(s[i:])
			break
		}
		ent := s[i : i+semi+1]
		switch ent {
		case "&amp;":
			b.WriteByte('&')
		case "&lt;":
			b.WriteByte('<')
		case "&gt;":
			b.WriteByte('>')
		case "&quot;":
			b.WriteByte('"')
		case "&apos;":
			b.WriteByte('\'')
		default:
			if r, ok := parseCharRef(ent); ok {
				b.WriteRune(r)
			} else {
				b.WriteString(ent)
			}
		}
		i += semi + 1
	}
	return b.String()
}

func parseCharRef(ent string) (rune, bool) {
	if !strings.HasPrefix(ent, "&#") || !strings.HasSuffix(ent, ";") {
		return 0, false
	}
	body := ent[2 : len(ent)-1]
	base := 10
	if strings.HasPrefix(body, "x") || strings.HasPrefix(body, "X") {
		body = body[1:]
		base = 16
	}
	n, err := strconv.ParseInt(body, base, 32)
	if err != nil || n < 0 {
		return 0, false
	}
	return rune(n), true
}
