package normalize

import (
	"sort"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"

	"github.com/fundval/contractdiff/internal/util/jsonpath"
	"github.com/fundval/contractdiff/value"
)

// Result holds a normalized golden/candidate pair.
type Result struct {
	Golden                value.Value
	Candidate             value.Value
	GoldenReplacements    []Replacement
	CandidateReplacements []Replacement
}

// Pair normalizes both sides of a comparison with the same rules.
func Pair(golden, candidate value.Value, rs RuleSet) Result {
	g, gr := Apply(golden, rs)
	c, cr := Apply(candidate, rs)
	return Result{
		Golden:                g,
		Candidate:             c,
		GoldenReplacements:    gr,
		CandidateReplacements: cr,
	}
}

// Apply rewrites the strings at uuid and timestamp paths to their
// placeholders. Values of any other kind at those paths are left as they
// are. v is not modified; unchanged subtrees are shared with the result.
func Apply(v value.Value, rs RuleSet) (value.Value, []Replacement) {
	if rs.IsZero() {
		return v, []Replacement{}
	}
	n := &normalizer{rules: rs, replacements: []Replacement{}}
	out := n.apply(v, jsonpath.Root(), jsonpath.Root())

	sort.SliceStable(n.replacements, func(i, j int) bool {
		return n.replacements[i].Path < n.replacements[j].Path
	})
	logging.V(7).Infof("normalized %d values (%s)", len(n.replacements), rs)
	return out, n.replacements
}

// ApplyEach normalizes every item of an array as an entity. Non-arrays are
// normalized as a single entity.
func ApplyEach(v value.Value, rs RuleSet) (value.Value, []Replacement) {
	if v.Kind() != value.Array {
		return Apply(v, rs)
	}
	n := &normalizer{rules: rs, replacements: []Replacement{}}
	root := jsonpath.Root()
	out := mapItems(v, func(i int, item value.Value) value.Value {
		return n.apply(item, root.Index(i), jsonpath.Root())
	})
	return out, n.replacements
}

type normalizer struct {
	rules        RuleSet
	replacements []Replacement
}

// apply walks v. abs is the address inside the whole document and rel the
// address inside the current entity, which rules are matched against.
func (n *normalizer) apply(v value.Value, abs, rel *jsonpath.Path) value.Value {
	switch v.Kind() {
	case value.String:
		class, ok := n.rules.rewriteClass(rel.Segments())
		if !ok {
			return v
		}
		old, _ := v.Str()
		n.replacements = append(n.replacements, Replacement{Path: abs.String(), Class: class, Old: old})
		return value.StringValue(class.placeholder())
	case value.Array:
		return mapItems(v, func(i int, item value.Value) value.Value {
			return n.apply(item, abs.Index(i), rel.Index(i))
		})
	case value.Object:
		return mapMembers(v, func(key string, member value.Value) value.Value {
			if rel.IsRoot() && n.rules.descends(key) {
				return n.nested(member, abs.Field(key))
			}
			return n.apply(member, abs.Field(key), rel.Field(key))
		})
	}
	return v
}

// nested normalizes a member holding entities of the same kind.
func (n *normalizer) nested(v value.Value, abs *jsonpath.Path) value.Value {
	switch v.Kind() {
	case value.Array:
		return mapItems(v, func(i int, item value.Value) value.Value {
			return n.apply(item, abs.Index(i), jsonpath.Root())
		})
	case value.Object:
		return n.apply(v, abs, jsonpath.Root())
	}
	return v
}
