package jsonpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is wrapped by every parse failure.
var ErrInvalidPath = errors.New("invalid path")

// Parse reads a canonical address such as `$.items[0]["a.b"]`.
func Parse(s string) (*Path, error) {
	segs, err := parseSegments(s, false)
	if err != nil {
		return nil, err
	}
	p := Root()
	for _, seg := range segs {
		if seg.IsIndex {
			p = p.Index(seg.Index)
		} else {
			p = p.Field(seg.Field)
		}
	}
	return p, nil
}

// Start returns the path a comparison should begin at: the parsed address
// when s is canonical, or an opaque root labelled s otherwise.
func Start(s string) *Path {
	if strings.TrimSpace(s) == "" {
		return Root()
	}
	if p, err := Parse(s); err == nil {
		return p
	}
	return Opaque(s)
}

// Pattern is a parsed path that may contain wildcard segments. `.*` matches
// any field name and `[*]` any array index.
type Pattern struct {
	raw  string
	segs []Segment
}

// ParsePattern reads a path pattern.
func ParsePattern(s string) (Pattern, error) {
	segs, err := parseSegments(s, true)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{raw: s, segs: segs}, nil
}

// MustPattern is ParsePattern for constant patterns. It panics on error.
func MustPattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// HasWildcard reports whether the pattern can match more than one path.
func (p Pattern) HasWildcard() bool {
	for _, seg := range p.segs {
		if seg.Wildcard {
			return true
		}
	}
	return false
}

// String renders the pattern canonically.
func (p Pattern) String() string {
	var b strings.Builder
	b.WriteString(RootLabel)
	for _, seg := range p.segs {
		seg.render(&b)
	}
	return b.String()
}

// Match reports whether path is addressed by the pattern. Paths hanging off
// an opaque root never match.
func (p Pattern) Match(path *Path) bool {
	if path.RootLabel() != RootLabel || path.Depth() != len(p.segs) {
		return false
	}
	return p.MatchSegments(path.Segments())
}

// MatchSegments matches an already materialised segment list.
func (p Pattern) MatchSegments(segs []Segment) bool {
	if len(segs) != len(p.segs) {
		return false
	}
	for i, want := range p.segs {
		got := segs[i]
		if want.IsIndex != got.IsIndex {
			return false
		}
		if want.Wildcard {
			continue
		}
		if want.IsIndex && want.Index != got.Index {
			return false
		}
		if !want.IsIndex && want.Field != got.Field {
			return false
		}
	}
	return true
}

func parseSegments(s string, allowWildcard bool) ([]Segment, error) {
	if !strings.HasPrefix(s, RootLabel) {
		return nil, fmt.Errorf("%w: %q must start with %q", ErrInvalidPath, s, RootLabel)
	}
	rest := s[len(RootLabel):]
	segs := []Segment{}
	for rest != "" {
		var (
			seg Segment
			err error
		)
		switch rest[0] {
		case '.':
			seg, rest, err = parseDotted(rest[1:])
		case '[':
			seg, rest, err = parseBracket(rest[1:])
		default:
			err = fmt.Errorf("unexpected %q", rest[0])
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, s, err)
		}
		if seg.Wildcard && !allowWildcard {
			return nil, fmt.Errorf("%w: %q: wildcards are only allowed in patterns", ErrInvalidPath, s)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func parseDotted(s string) (Segment, string, error) {
	end := strings.IndexAny(s, ".[")
	if end < 0 {
		end = len(s)
	}
	name := s[:end]
	if name == "*" {
		return Segment{Wildcard: true}, s[end:], nil
	}
	if !isIdentifier(name) {
		return Segment{}, "", fmt.Errorf("bad field name %q", name)
	}
	return Segment{Field: name}, s[end:], nil
}

func parseBracket(s string) (Segment, string, error) {
	if strings.HasPrefix(s, "*]") {
		return Segment{IsIndex: true, Wildcard: true}, s[2:], nil
	}
	if strings.HasPrefix(s, `"`) {
		quoted, err := strconv.QuotedPrefix(s)
		if err != nil {
			return Segment{}, "", fmt.Errorf("bad quoted field: %v", err)
		}
		name, err := strconv.Unquote(quoted)
		if err != nil {
			return Segment{}, "", fmt.Errorf("bad quoted field: %v", err)
		}
		after := s[len(quoted):]
		if !strings.HasPrefix(after, "]") {
			return Segment{}, "", fmt.Errorf("missing ] after %s", quoted)
		}
		return Segment{Field: name}, after[1:], nil
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return Segment{}, "", fmt.Errorf("missing ]")
	}
	i, err := strconv.Atoi(s[:end])
	if err != nil || i < 0 {
		return Segment{}, "", fmt.Errorf("bad index %q", s[:end])
	}
	return Segment{Index: i, IsIndex: true}, s[end+1:], nil
}
