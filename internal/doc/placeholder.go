package doc

import (
	"regexp"
	"sort"
)

// tokenPattern matches a complete placeholder token. The identifier is
// opaque: any characters short of the closing "}}" are allowed, matching is
// case sensitive and nothing is trimmed ("{{ name }}" and "{{name}}" are
// different identifiers).
var tokenPattern = regexp.MustCompile(`\{\{(.+?)\}\}`)

// Token is one placeholder occurrence inside a block of text.
type Token struct {
	Start int // byte offset of "{{"
	End   int // byte offset just past "}}"
	Name  string
}

// ScanTokens finds every placeholder token in text, in order.
func ScanTokens(text string) []Token {
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, Token{
			Start: m[0],
			End:   m[1],
			Name:  text[m[2]:m[3]],
		})
	}
	return tokens
}

// CollectNames accumulates distinct identifiers across blocks; call Sorted
// when done.
type CollectNames struct {
	seen map[string]struct{}
}

func (c *CollectNames) Add(text string) {
	for _, tok := range ScanTokens(text) {
		if c.seen == nil {
			c.seen = make(map[string]struct{})
		}
		c.seen[tok.Name] = struct{}{}
	}
}

func (c *CollectNames) Sorted() []string {
	names := make([]string, 0, len(c.seen))
	for name := range c.seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
