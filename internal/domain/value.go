package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies the concrete type held by a Value.
type ValueKind string

const (
	// ValueKind_Null represents an absent or null cell.
	ValueKind_Null ValueKind = "null"
	// ValueKind_String represents a string cell.
	ValueKind_String ValueKind = "string"
	// ValueKind_Number represents a numeric cell.
	ValueKind_Number ValueKind = "number"
	// ValueKind_Bool represents a boolean cell.
	ValueKind_Bool ValueKind = "bool"
	// ValueKind_Object represents a nested object cell.
	ValueKind_Object ValueKind = "object"
)

// Value is a tagged cell value so composers and formatters can
// pattern-match exhaustively instead of duck-typing on any.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Obj  map[string]Value
}

// NullValue returns the null Value.
func NullValue() Value {
	return Value{Kind: ValueKind_Null}
}

// StringValue wraps a string into a Value.
func StringValue(s string) Value {
	return Value{Kind: ValueKind_String, Str: s}
}

// NumberValue wraps a number into a Value.
func NumberValue(n float64) Value {
	return Value{Kind: ValueKind_Number, Num: n}
}

// BoolValue wraps a bool into a Value.
func BoolValue(b bool) Value {
	return Value{Kind: ValueKind_Bool, Bool: b}
}

// ObjectValue wraps a nested object into a Value.
func ObjectValue(obj map[string]Value) Value {
	return Value{Kind: ValueKind_Object, Obj: obj}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind == ValueKind_Null || v.Kind == ""
}

// String renders the value in its text form. Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case ValueKind_String:
		return v.Str
	case ValueKind_Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueKind_Bool:
		return strconv.FormatBool(v.Bool)
	case ValueKind_Object:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// AsNumber returns the numeric interpretation of the value.
// Strings are parsed; the second return reports whether a number was produced.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case ValueKind_Number:
		return v.Num, true
	case ValueKind_String:
		n, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueKind_String:
		return json.Marshal(v.Str)
	case ValueKind_Number:
		return json.Marshal(v.Num)
	case ValueKind_Bool:
		return json.Marshal(v.Bool)
	case ValueKind_Object:
		return json.Marshal(v.Obj)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case bool:
		return BoolValue(t), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, val := range t {
			nested, err := valueFromAny(val)
			if err != nil {
				return Value{}, err
			}
			obj[k] = nested
		}
		return ObjectValue(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported cell value type %T", raw)
	}
}

// Row is one tabular record keyed by column name.
type Row map[string]Value

// Get returns the value for a column, NullValue when the column is absent.
func (r Row) Get(column string) Value {
	v, ok := r[column]
	if !ok {
		return NullValue()
	}
	return v
}
