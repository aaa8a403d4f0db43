package compare

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pulumi/inflector"
)

// keyVariants lists the plural then the singular form of key, leaving out
// forms equal to key.
func keyVariants(key string) []string {
	if key == "" {
		return nil
	}
	var variants []string
	for _, v := range []string{inflector.Pluralize(key), inflector.Singularize(key)} {
		if v != "" && v != key && !slices.Contains(variants, v) {
			variants = append(variants, v)
		}
	}
	return variants
}

// renameHint looks for a singular/plural variant of key that exists only on
// the other side, e.g. golden `item` vs candidate `items`.
func renameHint(key string, otherSide, sameSide mapset.Set[string]) string {
	for _, v := range keyVariants(key) {
		if otherSide.Contains(v) && !sameSide.Contains(v) {
			return v
		}
	}
	return ""
}
