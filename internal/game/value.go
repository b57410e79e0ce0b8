package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	ValueNil ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
	ValueList
)

// Value is a property or flag value. Authors may write booleans, numbers,
// strings, or lists of strings in asset files; everything else is rejected
// at load. The zero Value is nil, which is falsy and renders empty.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
	list []string
}

func BoolValue(b bool) Value {
	return Value{kind: ValueBool, b: b}
}

func NumberValue(n float64) Value {
	return Value{kind: ValueNumber, n: n}
}

func StringValue(s string) Value {
	return Value{kind: ValueString, s: s}
}

func ListValue(list []string) Value {
	l := make([]string, len(list))
	copy(l, list)
	return Value{kind: ValueList, list: l}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Bool() bool {
	return v.kind == ValueBool && v.b
}

func (v Value) Number() float64 {
	if v.kind == ValueNumber {
		return v.n
	}
	return 0
}

// List returns the list elements, or nil for non-list values.
func (v Value) List() []string {
	if v.kind != ValueList {
		return nil
	}
	l := make([]string, len(v.list))
	copy(l, v.list)
	return l
}

// Truthy reports whether the value counts as set: true booleans, non-zero
// numbers, non-empty strings, and non-empty lists.
func (v Value) Truthy() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.n != 0
	case ValueString:
		return v.s != ""
	case ValueList:
		return len(v.list) > 0
	default:
		return false
	}
}

// String renders the value the way it appears in condition literals and
// templates. Whole numbers render without a decimal point.
func (v Value) String() string {
	switch v.kind {
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case ValueString:
		return v.s
	case ValueList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Matches compares the value to a condition literal. Literals are untyped
// strings, so "true" matches the boolean true and "100" matches the number
// 100. Lists match when any element equals the literal.
func (v Value) Matches(literal string) bool {
	switch v.kind {
	case ValueBool:
		return strconv.FormatBool(v.b) == literal
	case ValueNumber:
		if n, err := strconv.ParseFloat(literal, 64); err == nil {
			return v.n == n
		}
		return false
	case ValueString:
		return v.s == literal
	case ValueList:
		for _, e := range v.list {
			if e == literal {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueBool:
		return v.b == o.b
	case ValueNumber:
		return v.n == o.n
	case ValueString:
		return v.s == o.s
	case ValueList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = Value{}
	case bool:
		*v = BoolValue(t)
	case float64:
		*v = NumberValue(t)
	case string:
		*v = StringValue(t)
	case []any:
		list := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("list values must contain only strings, got %T", e)
			}
			list = append(list, s)
		}
		*v = Value{kind: ValueList, list: list}
	default:
		return fmt.Errorf("unsupported value type %T", t)
	}

	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueBool:
		return json.Marshal(v.b)
	case ValueNumber:
		return json.Marshal(v.n)
	case ValueString:
		return json.Marshal(v.s)
	case ValueList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// copyProps deep-copies a property map so definitions stay immutable.
func copyProps(props map[string]Value) map[string]Value {
	out := make(map[string]Value, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
