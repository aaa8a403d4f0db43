package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ErrInvalidJSON is wrapped by every decoding failure.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse decodes exactly one JSON document. Object member order is kept.
// Numbers beyond the float64 range become ±Inf; such documents compare
// normally but cannot be encoded back to JSON.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, fmt.Errorf("%w: empty payload", ErrInvalidJSON)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("%w: trailing content", ErrInvalidJSON)
	}
	return v, nil
}

// MustParse is Parse for literals in tests and tables. It panics on error.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		n, err := strconv.ParseFloat(string(t), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("number %s: %w", t, err)
		}
		return NumberValue(n), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t)
	}
	return Value{}, fmt.Errorf("unexpected token %T", tok)
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{kind: Array, items: items}, nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	members := []Member{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string, got %v", tok)
		}
		member, err := decodeValue(dec)
		if err != nil {
			return Value{}, fmt.Errorf("member %q: %w", key, err)
		}
		members = append(members, Member{Key: key, Value: member})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return ObjectValue(members...), nil
}

// FromAny converts a tree produced by encoding/json (or built by hand from
// maps, slices and scalars) into a Value. Map keys are sorted since Go maps
// carry no order.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Number:
		n, err := strconv.ParseFloat(string(t), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("%w: number %s", ErrInvalidJSON, t)
		}
		return NumberValue(n), nil
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case uint:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			item, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return Value{kind: Array, items: items}, nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = StringValue(s)
		}
		return Value{kind: Array, items: items}, nil
	case map[string]any:
		members := make([]Member, 0, len(t))
		for _, k := range sortedKeys(t) {
			m, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%q: %w", k, err)
			}
			members = append(members, Member{Key: k, Value: m})
		}
		return ObjectValue(members...), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported Go type %T", ErrInvalidJSON, x)
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %v is not representable", ErrInvalidJSON, f)
	}
	return NumberValue(f), nil
}
