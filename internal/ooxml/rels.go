package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Relationship is one entry of an OPC .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

const relsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

type relationshipsXML struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []Relationship `xml:"Relationship"`
}

// DecodeRelationships parses a .rels part.
func DecodeRelationships(data []byte) ([]Relationship, error) {
	var parsed relationshipsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode relationships: %w", err)
	}
	return parsed.Rels, nil
}

// EncodeRelationships serializes a .rels part. Entries are written in the
// given order.
func EncodeRelationships(rels []Relationship) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<Relationships xmlns="` + relsNamespace + `">`)
	for _, r := range rels {
		buf.WriteString(`<Relationship Id="` + escapeAttr(r.ID) +
			`" Type="` + escapeAttr(r.Type) +
			`" Target="` + escapeAttr(r.Target) + `"`)
		if r.TargetMode != "" {
			buf.WriteString(` TargetMode="` + escapeAttr(r.TargetMode) + `"`)
		}
		buf.WriteString("/>")
	}
	buf.WriteString("</Relationships>")
	return buf.Bytes()
}

// NextRelID returns the first rId not taken by rels, counting upward from
// the highest numeric suffix present.
func NextRelID(rels []Relationship) int {
	max := 0
	for _, r := range rels {
		if n, ok := relIDNumber(r.ID); ok && n > max {
			max = n
		}
	}
	return max + 1
}

func relIDNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, "rId") {
		return 0, false
	}
	n, err := strconv.Atoi(id[3:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// RelsPartName returns the .rels part name for a given part, e.g.
// "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels".
func RelsPartName(partName string) string {
	idx := strings.LastIndexByte(partName, '/')
	if idx < 0 {
		return "_rels/" + partName + ".rels"
	}
	return partName[:idx] + "/_rels/" + partName[idx+1:] + ".rels"
}

// SortRelationships orders rels by numeric rId suffix, unknown formats last
// in lexical order.
func SortRelationships(rels []Relationship) {
	sort.SliceStable(rels, func(i, j int) bool {
		ni, iok := relIDNumber(rels[i].ID)
		nj, jok := relIDNumber(rels[j].ID)
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return rels[i].ID < rels[j].ID
	})
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
