// Package stats summarizes the structure of a JSON document. The summary
// helps when writing normalization rules for a new endpoint.
package stats

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/fundval/contractdiff/internal/util/jsonpath"
	"github.com/fundval/contractdiff/value"
)

// Stats is the summary of one document.
type Stats struct {
	Summary Summary `json:"summary"`
	// Paths maps every generalized path (indexes replaced by [*]) to the
	// kinds observed there. Only filled by CountDetailed.
	Paths map[string][]string `json:"paths,omitempty"`
}

type Summary struct {
	Nodes            int            `json:"nodes"`
	Kinds            map[string]int `json:"kinds"`
	MaxDepth         int            `json:"maxDepth"`
	MaxArrayLength   int            `json:"maxArrayLength"`
	LongestArrayPath string         `json:"longestArrayPath,omitempty"`
	DistinctKeys     int            `json:"distinctKeys"`
}

type visitor interface {
	visitValue(path *jsonpath.Path, v value.Value)
}

// Count summarizes v.
func Count(v value.Value) Stats {
	b := newBuilder(false)
	visit(v, jsonpath.Root(), b)
	return b.finish()
}

// CountDetailed summarizes v and lists its generalized paths.
func CountDetailed(v value.Value) Stats {
	b := newBuilder(true)
	visit(v, jsonpath.Root(), b)
	return b.finish()
}

func visit(v value.Value, path *jsonpath.Path, visitor visitor) {
	visitor.visitValue(path, v)
	switch v.Kind() {
	case value.Array:
		for i, item := range v.Items() {
			visit(item, path.Index(i), visitor)
		}
	case value.Object:
		for _, m := range v.Members() {
			visit(m.Value, path.Field(m.Key), visitor)
		}
	}
}

type builder struct {
	summary  Summary
	keys     mapset.Set[string]
	detailed bool
	paths    map[string]mapset.Set[string]
}

func newBuilder(detailed bool) *builder {
	return &builder{
		summary:  Summary{Kinds: map[string]int{}},
		keys:     mapset.NewThreadUnsafeSet[string](),
		detailed: detailed,
		paths:    map[string]mapset.Set[string]{},
	}
}

func (b *builder) visitValue(path *jsonpath.Path, v value.Value) {
	b.summary.Nodes++
	b.summary.Kinds[v.Kind().String()]++
	b.summary.MaxDepth = max(b.summary.MaxDepth, path.Depth())

	switch v.Kind() {
	case value.Array:
		if v.Len() > b.summary.MaxArrayLength {
			b.summary.MaxArrayLength = v.Len()
			b.summary.LongestArrayPath = path.String()
		}
	case value.Object:
		b.keys.Append(v.Keys()...)
	}

	if b.detailed {
		general := generalize(path)
		if b.paths[general] == nil {
			b.paths[general] = mapset.NewThreadUnsafeSet[string]()
		}
		b.paths[general].Add(v.Kind().String())
	}
}

func (b *builder) finish() Stats {
	b.summary.DistinctKeys = b.keys.Cardinality()
	out := Stats{Summary: b.summary}
	if b.detailed {
		out.Paths = make(map[string][]string, len(b.paths))
		for p, kinds := range b.paths {
			names := kinds.ToSlice()
			slices.Sort(names)
			out.Paths[p] = names
		}
	}
	return out
}

// generalize renders path with every index replaced by [*], the form used
// by normalization rules.
func generalize(path *jsonpath.Path) string {
	var b strings.Builder
	b.WriteString(jsonpath.RootLabel)
	for _, seg := range path.Segments() {
		if seg.IsIndex {
			seg.Wildcard = true
		}
		b.WriteString(seg.String())
	}
	return b.String()
}
