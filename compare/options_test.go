package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundval/contractdiff/internal/util/jsonpath"
)

func TestOptionsWithMergesFlags(t *testing.T) {
	t.Parallel()

	base := AllowValueDiffAt("$.id")
	merged := base.With("$.id", Rule{Optional: true})

	assert.Equal(t, Rule{AllowValueDiff: true}, base.Rules["$.id"])
	assert.True(t, merged.Rules["$.id"].AllowValueDiff)
	assert.True(t, merged.Rules["$.id"].Optional)
}

func TestOptionsMerge(t *testing.T) {
	t.Parallel()

	merged := IgnoreAt("$.a").Merge(ExactAt("$.b", "$.a"))
	require.Len(t, merged.Rules, 2)
	assert.Equal(t, Rule{Ignore: true, Exact: true}, merged.Rules["$.a"])
	assert.Equal(t, Rule{Exact: true}, merged.Rules["$.b"])
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, AllowValueDiffAt("$.a", "$.items[*].id", `$["x y"]`).Validate())
	err := IgnoreAt("a.b", "$..").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, jsonpath.ErrInvalidPath)
	assert.Contains(t, err.Error(), `rule "a.b"`)
}

func TestLookupPrecedence(t *testing.T) {
	t.Parallel()

	rs := compileRules(Options{Rules: map[string]Rule{
		"$.items[0].id":   {Exact: true},
		"$.items[*].id":   {AllowValueDiff: true},
		"$.items[*].*":    {Optional: true},
		`$["items"][1]`:   {Ignore: true},
		"not a real path": {Ignore: true},
	}})

	first := rs.lookup(jsonpath.Root().Field("items").Index(0).Field("id"))
	assert.Equal(t, Rule{Exact: true, AllowValueDiff: true, Optional: true}, first)

	second := rs.lookup(jsonpath.Root().Field("items").Index(1))
	assert.True(t, second.Ignore)

	other := rs.lookup(jsonpath.Root().Field("other"))
	assert.Equal(t, Rule{}, other)

	verbatim := rs.lookup(jsonpath.Opaque("not a real path"))
	assert.True(t, verbatim.Ignore)
}

func TestNilRuleSetLookup(t *testing.T) {
	t.Parallel()

	var rs *ruleSet
	assert.Equal(t, Rule{}, rs.lookup(jsonpath.Root()))
	assert.Nil(t, compileRules(Options{}))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("schema")
	require.NoError(t, err)
	assert.Equal(t, ModeSchema, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeShape, m)

	_, err = ParseMode("values")
	assert.Error(t, err)
}
