// Package jsonpath tracks and renders the address of a value inside a JSON
// document, e.g. `$.children[2].pnl`.
package jsonpath

import (
	"strconv"
	"strings"
)

// RootLabel is the canonical label of the document root.
const RootLabel = "$"

// Path is one node of a parent-linked address. Extending a path never
// modifies the receiver, so every recursive frame owns its own address.
type Path struct {
	parent *Path
	seg    Segment
	label  string
	depth  int
}

// Segment is one step of a path: a field name or an array index.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
	// Wildcard is only set for pattern segments (`.*` or `[*]`).
	Wildcard bool
}

// Root returns the document root `$`.
func Root() *Path {
	return &Path{label: RootLabel}
}

// Opaque returns a root with an arbitrary label. It is used when a caller
// starts a comparison from a path that is not canonical.
func Opaque(label string) *Path {
	if label == "" {
		return Root()
	}
	return &Path{label: label}
}

// Field returns the child address for an object member.
func (p *Path) Field(name string) *Path {
	return &Path{parent: p, seg: Segment{Field: name}, depth: p.Depth() + 1}
}

// Index returns the child address for an array item.
func (p *Path) Index(i int) *Path {
	return &Path{parent: p, seg: Segment{Index: i, IsIndex: true}, depth: p.Depth() + 1}
}

// Depth is the number of segments below the root.
func (p *Path) Depth() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// IsRoot reports whether p has no segments.
func (p *Path) IsRoot() bool {
	return p == nil || p.parent == nil
}

// RootLabel returns the label of the root this path hangs off.
func (p *Path) RootLabel() string {
	n := p
	for n != nil && n.parent != nil {
		n = n.parent
	}
	if n == nil {
		return RootLabel
	}
	return n.label
}

// Segments returns the segments from the root down.
func (p *Path) Segments() []Segment {
	if p.IsRoot() {
		return nil
	}
	out := make([]Segment, p.depth)
	for n := p; n.parent != nil; n = n.parent {
		out[n.depth-1] = n.seg
	}
	return out
}

// String renders the canonical address.
func (p *Path) String() string {
	var b strings.Builder
	b.WriteString(p.RootLabel())
	for _, seg := range p.Segments() {
		seg.render(&b)
	}
	return b.String()
}

func (s Segment) String() string {
	var b strings.Builder
	s.render(&b)
	return b.String()
}

func (s Segment) render(b *strings.Builder) {
	switch {
	case s.IsIndex && s.Wildcard:
		b.WriteString("[*]")
	case s.IsIndex:
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(s.Index))
		b.WriteByte(']')
	case s.Wildcard:
		b.WriteString(".*")
	case isIdentifier(s.Field):
		b.WriteByte('.')
		b.WriteString(s.Field)
	default:
		b.WriteByte('[')
		b.WriteString(strconv.Quote(s.Field))
		b.WriteByte(']')
	}
}

// isIdentifier reports whether name can be rendered in dotted form.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
