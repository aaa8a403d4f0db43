package normalize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fundval/contractdiff/compare"
	"github.com/fundval/contractdiff/internal/util/jsonpath"
)

type compiledRule struct {
	spec    RuleSpec
	pattern jsonpath.Pattern
}

// RuleSet is a compiled, read-only set of normalization rules for one kind
// of entity. The zero RuleSet normalizes nothing.
type RuleSet struct {
	rules   []compiledRule
	descend []string
}

// NewRuleSet compiles specs. descend names members holding nested entities
// of the same kind.
func NewRuleSet(specs []RuleSpec, descend ...string) (RuleSet, error) {
	return compileFile(RulesFile{Rules: specs, Descend: descend})
}

// MustRuleSet is NewRuleSet for the built-in sets. It panics on error.
func MustRuleSet(specs []RuleSpec, descend ...string) RuleSet {
	rs, err := NewRuleSet(specs, descend...)
	if err != nil {
		panic(err)
	}
	return rs
}

func compileFile(file RulesFile) (RuleSet, error) {
	rs := RuleSet{descend: slices.Clone(file.Descend)}
	for i, spec := range file.Rules {
		if !spec.Class.valid() {
			return RuleSet{}, fmt.Errorf("%w: rules[%d].class %q", ErrRulesInvalid, i, spec.Class)
		}
		pattern, err := jsonpath.ParsePattern(spec.Path)
		if err != nil {
			return RuleSet{}, fmt.Errorf("%w: rules[%d]: %v", ErrRulesInvalid, i, err)
		}
		rs.rules = append(rs.rules, compiledRule{spec: spec, pattern: pattern})
	}
	return rs, nil
}

// Extend returns a set holding the rules of rs followed by those of other.
func (rs RuleSet) Extend(other RuleSet) RuleSet {
	return RuleSet{
		rules:   append(slices.Clone(rs.rules), other.rules...),
		descend: append(slices.Clone(rs.descend), other.descend...),
	}
}

// Specs returns the rules in declaration order.
func (rs RuleSet) Specs() []RuleSpec {
	out := make([]RuleSpec, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.spec
	}
	return out
}

func (rs RuleSet) IsZero() bool {
	return len(rs.rules) == 0 && len(rs.descend) == 0
}

func (rs RuleSet) String() string {
	parts := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		parts = append(parts, r.spec.String())
	}
	return strings.Join(parts, ", ")
}

// rewriteClass returns the first rewriting class whose pattern matches segs.
func (rs RuleSet) rewriteClass(segs []jsonpath.Segment) (Class, bool) {
	for _, r := range rs.rules {
		if r.spec.Class.rewrites() && r.pattern.MatchSegments(segs) {
			return r.spec.Class, true
		}
	}
	return "", false
}

func (rs RuleSet) descends(name string) bool {
	return slices.Contains(rs.descend, name)
}

// Options turns the value, ignore and optional classes into comparison
// rules. Rewriting classes need no rule since both sides end up equal.
// Nested entities one level below each descend member are covered too.
func (rs RuleSet) Options() compare.Options {
	var opts compare.Options
	for _, r := range rs.rules {
		rule, ok := compareRule(r.spec.Class)
		if !ok {
			continue
		}
		opts = opts.With(r.pattern.String(), rule)
		relative := strings.TrimPrefix(r.pattern.String(), jsonpath.RootLabel)
		for _, name := range rs.descend {
			member := jsonpath.Root().Field(name).String()
			opts = opts.With(member+"[*]"+relative, rule)
			opts = opts.With(member+relative, rule)
		}
	}
	return opts
}

func compareRule(c Class) (compare.Rule, bool) {
	switch c {
	case ClassValue:
		return compare.Rule{AllowValueDiff: true}, true
	case ClassIgnore:
		return compare.Rule{Ignore: true}, true
	case ClassOptional:
		return compare.Rule{Optional: true}, true
	}
	return compare.Rule{}, false
}
