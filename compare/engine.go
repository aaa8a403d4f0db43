package compare

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"github.com/fundval/contractdiff/internal/util/jsonpath"
	"github.com/fundval/contractdiff/value"
)

// Shape checks that expected (golden) and actual (candidate) are equal in
// structure and value. path is the address of the inputs, normally "$". The
// first violation found depth-first is returned as a *DiffError.
func Shape(expected, actual value.Value, path string, opts Options) error {
	return run(ModeShape, expected, actual, path, opts)
}

// Schema checks that expected and actual agree on keys, array lengths and
// JSON kinds at every path. Literal values are not compared.
func Schema(expected, actual value.Value, path string) error {
	return run(ModeSchema, expected, actual, path, Options{})
}

// SchemaWith is Schema with per-path rules. Rule.Exact re-enables literal
// comparison for the subtree it addresses.
func SchemaWith(expected, actual value.Value, path string, opts Options) error {
	return run(ModeSchema, expected, actual, path, opts)
}

// Check runs the comparison selected by mode.
func Check(mode Mode, expected, actual value.Value, path string, opts Options) error {
	return run(mode, expected, actual, path, opts)
}

func run(mode Mode, expected, actual value.Value, path string, opts Options) error {
	w := &walker{mode: mode, rules: compileRules(opts)}
	if de := w.walk(expected, actual, jsonpath.Start(path), mode == ModeShape); de != nil {
		return de
	}
	return nil
}

// walker holds the read-only state of one top-level comparison.
type walker struct {
	mode  Mode
	rules *ruleSet
}

func (w *walker) walk(expected, actual value.Value, path *jsonpath.Path, exact bool) *DiffError {
	rule := w.rules.lookup(path)
	if rule.Ignore {
		return nil
	}
	if rule.Predicate != nil {
		if err := rule.Predicate(expected, actual); err != nil {
			if de, ok := AsDiffError(err); ok {
				return de
			}
			return predicateFailed(w.mode, path.String(), err)
		}
		return nil
	}
	exact = exact || rule.Exact

	if expected.Kind() != actual.Kind() {
		return typeMismatch(w.mode, path.String(), expected, actual)
	}
	if rule.AllowValueDiff {
		return nil
	}

	switch expected.Kind() {
	case value.Null:
		return nil
	case value.Bool, value.Number, value.String:
		if exact && !expected.Equal(actual) {
			return valueMismatch(w.mode, path.String(), expected, actual)
		}
		return nil
	case value.Array:
		return w.walkArray(expected, actual, path, exact)
	case value.Object:
		return w.walkObject(expected, actual, path, rule, exact)
	}
	contract.Failf("unknown JSON kind %v at %s", expected.Kind(), path)
	return nil
}

func (w *walker) walkArray(expected, actual value.Value, path *jsonpath.Path, exact bool) *DiffError {
	if expected.Len() != actual.Len() {
		return lengthMismatch(w.mode, path.String(), expected.Len(), actual.Len())
	}
	for i := 0; i < expected.Len(); i++ {
		if de := w.walk(expected.Index(i), actual.Index(i), path.Index(i), exact); de != nil {
			return de
		}
	}
	return nil
}

func (w *walker) walkObject(expected, actual value.Value, path *jsonpath.Path, rule Rule, exact bool) *DiffError {
	expectedKeys, actualKeys := expected.Keys(), actual.Keys()
	inExpected := mapset.NewThreadUnsafeSet(expectedKeys...)
	inActual := mapset.NewThreadUnsafeSet(actualKeys...)

	if !rule.AllowKeyDiff {
		for _, k := range expectedKeys {
			if inActual.Contains(k) {
				continue
			}
			e, _ := expected.Get(k)
			allowed, de := w.missingMember(path.Field(k), e, true)
			if de != nil {
				return de
			}
			if allowed {
				continue
			}
			hint := renameHint(k, inActual, inExpected)
			return keyMismatch(w.mode, path.String(), k, true, hint)
		}
		for _, k := range actualKeys {
			if inExpected.Contains(k) {
				continue
			}
			a, _ := actual.Get(k)
			allowed, de := w.missingMember(path.Field(k), a, false)
			if de != nil {
				return de
			}
			if allowed {
				continue
			}
			hint := renameHint(k, inExpected, inActual)
			return keyMismatch(w.mode, path.String(), k, false, hint)
		}
	}

	for _, k := range expectedKeys {
		if !inActual.Contains(k) {
			continue
		}
		e, _ := expected.Get(k)
		a, _ := actual.Get(k)
		if de := w.walk(e, a, path.Field(k), exact); de != nil {
			return de
		}
	}
	return nil
}

// missingMember decides a key that only one side has. An ignored key may be
// absent outright. An optional key may be absent only when the other side
// holds null; any other value is a type mismatch against null.
func (w *walker) missingMember(child *jsonpath.Path, present value.Value, inExpected bool) (bool, *DiffError) {
	if w.rules == nil {
		return false, nil
	}
	r := w.rules.lookup(child)
	switch {
	case r.Ignore:
		return true, nil
	case !r.Optional:
		return false, nil
	case present.IsNull():
		return true, nil
	case inExpected:
		return false, typeMismatch(w.mode, child.String(), present, value.NullValue())
	default:
		return false, typeMismatch(w.mode, child.String(), value.NullValue(), present)
	}
}
