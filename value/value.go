// Package value models decoded JSON documents as an explicit tagged union.
//
// A Value is immutable once constructed. Objects keep their members in
// document order so diagnostics and re-encoding are deterministic.
package value

import (
	"fmt"
	"slices"
	"strconv"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the JSON-facing type name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one JSON value. The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	s     string
	items []Value
	obj   *object
}

type object struct {
	keys    []string
	members map[string]Value
}

// Member is a key/value pair used to build objects in order.
type Member struct {
	Key   string
	Value Value
}

func NullValue() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

func NumberValue(n float64) Value { return Value{kind: Number, n: n} }

func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue copies items into a new array value.
func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: slices.Clone(items)}
}

// ObjectValue builds an object from members in order. A repeated key keeps
// its first position and takes the last value.
func ObjectValue(members ...Member) Value {
	o := &object{
		keys:    make([]string, 0, len(members)),
		members: make(map[string]Value, len(members)),
	}
	for _, m := range members {
		if _, seen := o.members[m.Key]; !seen {
			o.keys = append(o.keys, m.Key)
		}
		o.members[m.Key] = m.Value
	}
	return Value{kind: Object, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == Bool }

// Number returns the number and whether v is a number.
func (v Value) Number() (float64, bool) { return v.n, v.kind == Number }

// Str returns the string and whether v is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == String }

// Len is the number of array items or object members, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.obj.keys)
	}
	return 0
}

// Index returns the i-th array item. It returns null when v is not an
// array or i is out of range.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Items returns a copy of the array items.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return slices.Clone(v.items)
}

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	return slices.Clone(v.obj.keys)
}

// Get looks up an object member.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	m, ok := v.obj.members[key]
	return m, ok
}

// Has reports whether v is an object with key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Members returns the object members in document order.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	out := make([]Member, len(v.obj.keys))
	for i, k := range v.obj.keys {
		out[i] = Member{Key: k, Value: v.obj.members[k]}
	}
	return out
}

// With returns a copy of the object v with key set to m. Existing keys keep
// their position; new keys are appended. v itself is not modified.
func (v Value) With(key string, m Value) Value {
	if v.kind != Object {
		return ObjectValue(Member{Key: key, Value: m})
	}
	members := v.Members()
	for i := range members {
		if members[i].Key == key {
			members[i].Value = m
			return ObjectValue(members...)
		}
	}
	return ObjectValue(append(members, Member{Key: key, Value: m})...)
}

// WithItem returns a copy of the array v with item i replaced.
func (v Value) WithItem(i int, item Value) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return v
	}
	items := slices.Clone(v.items)
	items[i] = item
	return Value{kind: Array, items: items}
}

// Equal reports deep equality. Object member order is not significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case String:
		return v.s == o.s
	case Array:
		return slices.EqualFunc(v.items, o.items, Value.Equal)
	case Object:
		if len(v.obj.keys) != len(o.obj.keys) {
			return false
		}
		for _, k := range v.obj.keys {
			om, ok := o.obj.members[k]
			if !ok || !v.obj.members[k].Equal(om) {
				return false
			}
		}
		return true
	}
	return false
}

// Literal renders a primitive the way it appears in diagnostics: strings
// quoted, numbers in shortest form. Containers render as their type name.
func (v Value) Literal() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return formatNumber(v.n)
	case String:
		return strconv.Quote(v.s)
	case Array:
		return fmt.Sprintf("array(%d)", len(v.items))
	}
	return fmt.Sprintf("object(%d)", len(v.obj.keys))
}

// String implements fmt.Stringer with the compact JSON encoding.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return v.Literal()
	}
	return string(data)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
