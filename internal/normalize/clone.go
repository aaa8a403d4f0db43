package normalize

import "github.com/fundval/contractdiff/value"

// mapItems rebuilds an array only when fn changed at least one item, so
// callers never observe in-place updates and untouched arrays are shared.
func mapItems(v value.Value, fn func(int, value.Value) value.Value) value.Value {
	items := v.Items()
	changed := false
	for i, item := range items {
		next := fn(i, item)
		if !sameValue(item, next) {
			items[i] = next
			changed = true
		}
	}
	if !changed {
		return v
	}
	return value.ArrayValue(items...)
}

// mapMembers is mapItems for objects. Member order is kept.
func mapMembers(v value.Value, fn func(string, value.Value) value.Value) value.Value {
	members := v.Members()
	changed := false
	for i, m := range members {
		next := fn(m.Key, m.Value)
		if !sameValue(m.Value, next) {
			members[i].Value = next
			changed = true
		}
	}
	if !changed {
		return v
	}
	return value.ObjectValue(members...)
}

func sameValue(a, b value.Value) bool {
	return a.Kind() == b.Kind() && a.Equal(b)
}
