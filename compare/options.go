package compare

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/fundval/contractdiff/internal/util/jsonpath"
	"github.com/fundval/contractdiff/value"
)

// Rule overrides how the value at one path (and everything below it) is
// compared.
type Rule struct {
	// Ignore skips the path entirely. The key may also be absent.
	Ignore bool `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	// AllowValueDiff requires the JSON kind to match and stops there.
	AllowValueDiff bool `json:"allowValueDiff,omitempty" yaml:"allowValueDiff,omitempty"`
	// Optional lets absent and null stand for each other on either side.
	// Absent against a non-null value is still a type mismatch.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
	// AllowKeyDiff tolerates differing key sets on the object at this path.
	AllowKeyDiff bool `json:"allowKeyDiff,omitempty" yaml:"allowKeyDiff,omitempty"`
	// Exact compares literals below this path even in schema mode.
	Exact bool `json:"exact,omitempty" yaml:"exact,omitempty"`
	// Predicate replaces the built-in comparison for this path.
	Predicate func(expected, actual value.Value) error `json:"-" yaml:"-"`
}

func (r Rule) merge(o Rule) Rule {
	r.Ignore = r.Ignore || o.Ignore
	r.AllowValueDiff = r.AllowValueDiff || o.AllowValueDiff
	r.Optional = r.Optional || o.Optional
	r.AllowKeyDiff = r.AllowKeyDiff || o.AllowKeyDiff
	r.Exact = r.Exact || o.Exact
	if r.Predicate == nil {
		r.Predicate = o.Predicate
	}
	return r
}

// Options maps exact paths (`$.user.id`) or patterns (`$.items[*].id`,
// `$.*.created_at`) to rules. The zero value means strict comparison.
type Options struct {
	Rules map[string]Rule
}

// With returns a copy of o with r merged into the rule at path.
func (o Options) With(path string, r Rule) Options {
	rules := maps.Clone(o.Rules)
	if rules == nil {
		rules = map[string]Rule{}
	}
	rules[path] = rules[path].merge(r)
	return Options{Rules: rules}
}

// Merge returns a copy of o with every rule of other merged in.
func (o Options) Merge(other Options) Options {
	out := Options{Rules: maps.Clone(o.Rules)}
	for _, path := range slices.Sorted(maps.Keys(other.Rules)) {
		out = out.With(path, other.Rules[path])
	}
	return out
}

// AllowValueDiffAt tolerates literal differences at the given paths.
func AllowValueDiffAt(paths ...string) Options {
	return rulesAt(Rule{AllowValueDiff: true}, paths)
}

// IgnoreAt skips the given paths.
func IgnoreAt(paths ...string) Options {
	return rulesAt(Rule{Ignore: true}, paths)
}

// ExactAt compares literals at the given paths during a schema comparison.
func ExactAt(paths ...string) Options {
	return rulesAt(Rule{Exact: true}, paths)
}

func rulesAt(r Rule, paths []string) Options {
	var o Options
	for _, p := range paths {
		o = o.With(p, r)
	}
	return o
}

// Validate reports rule keys that are not valid paths or patterns. Unparsable
// keys are otherwise matched verbatim against rendered paths.
func (o Options) Validate() error {
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(o.Rules)) {
		if _, err := jsonpath.ParsePattern(key); err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

type patternRule struct {
	pattern jsonpath.Pattern
	rule    Rule
}

// ruleSet is the read-only, compiled form of Options used during a walk.
type ruleSet struct {
	exact    map[string]Rule
	patterns []patternRule
}

func compileRules(o Options) *ruleSet {
	if len(o.Rules) == 0 {
		return nil
	}
	rs := &ruleSet{exact: map[string]Rule{}}
	for _, key := range slices.Sorted(maps.Keys(o.Rules)) {
		r := o.Rules[key]
		pat, err := jsonpath.ParsePattern(key)
		switch {
		case err != nil:
			rs.exact[key] = rs.exact[key].merge(r)
		case pat.HasWildcard():
			rs.patterns = append(rs.patterns, patternRule{pattern: pat, rule: r})
		default:
			canonical := pat.String()
			rs.exact[canonical] = rs.exact[canonical].merge(r)
		}
	}
	return rs
}

// lookup merges every rule addressing path. Exact keys come first, then
// patterns in key order.
func (rs *ruleSet) lookup(path *jsonpath.Path) Rule {
	if rs == nil {
		return Rule{}
	}
	r := rs.exact[path.String()]
	if len(rs.patterns) == 0 {
		return r
	}
	segs := path.Segments()
	rooted := path.RootLabel() == jsonpath.RootLabel
	for _, pr := range rs.patterns {
		if rooted && pr.pattern.MatchSegments(segs) {
			r = r.merge(pr.rule)
		}
	}
	return r
}
