// Package ooxml handles the zip container shared by all Office Open XML
// formats and the run-fragmented text substitution common to them.
package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// Package is an OOXML container held fully in memory. Parts keep the order
// they had in the source archive so that serialization is deterministic.
type Package struct {
	names []string
	parts map[string][]byte
}

// Open parses the zip archive in data. It never retains data.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read zip container: %w", err)
	}

	pkg := &Package{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		if _, dup := pkg.parts[f.Name]; !dup {
			pkg.names = append(pkg.names, f.Name)
		}
		pkg.parts[f.Name] = content
	}
	return pkg, nil
}

// Part returns the content of a named part.
func (p *Package) Part(name string) ([]byte, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// SetPart replaces or appends a part.
func (p *Package) SetPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = content
}

// RemovePart deletes a part if present.
func (p *Package) RemovePart(name string) {
	if _, ok := p.parts[name]; !ok {
		return
	}
	delete(p.parts, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

// Names returns part names in archive order.
func (p *Package) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Bytes serializes the package back to a zip archive. Entry metadata is
// fixed so that the same parts always produce the same bytes.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		w, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize container: %w", err)
	}
	return buf.Bytes(), nil
}
