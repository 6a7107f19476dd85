package params

import (
	"fmt"
	"math"
	"strconv"
)

// ValueType identifies the dynamic type carried by a Value.
type ValueType int

// Value types as they arrive from JSON settings payloads.
const (
	TypeNull ValueType = iota
	TypeFloat
	TypeInt
	TypeBool
	TypeString
)

// Value is a dynamically typed setting value.
//
// Values arrive from JSON, where all numbers decode as float64;
// FromJSON recovers integral numbers as TypeInt so integer parameters
// round-trip exactly.
type Value struct {
	Type  ValueType
	Float float64
	Int   int64
	Bool  bool
	Str   string
}

// FromJSON converts a decoded JSON value (float64, bool, string, or
// nil) into a Value.
func FromJSON(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{Type: TypeNull}, nil
	case bool:
		return Value{Type: TypeBool, Bool: v}, nil
	case string:
		return Value{Type: TypeString, Str: v}, nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return Value{Type: TypeInt, Int: int64(v), Float: v}, nil
		}
		return Value{Type: TypeFloat, Float: v}, nil
	case int:
		return Value{Type: TypeInt, Int: int64(v), Float: float64(v)}, nil
	case int64:
		return Value{Type: TypeInt, Int: v, Float: float64(v)}, nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported JSON type %T", ErrTypeMismatch, raw)
	}
}

// AsFloat coerces the value to float64. Integers widen.
func (v Value) AsFloat() (float64, bool) {
	switch v.Type {
	case TypeFloat:
		return v.Float, true
	case TypeInt:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// AsInt coerces the value to int64. Floats convert only when integral.
func (v Value) AsInt() (int64, bool) {
	switch v.Type {
	case TypeInt:
		return v.Int, true
	case TypeFloat:
		if v.Float == math.Trunc(v.Float) {
			return int64(v.Float), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsBool coerces the value to bool. Integers 0 and 1 convert.
func (v Value) AsBool() (bool, bool) {
	switch v.Type {
	case TypeBool:
		return v.Bool, true
	case TypeInt:
		switch v.Int {
		case 0:
			return false, true
		case 1:
			return true, true
		}
		return false, false
	default:
		return false, false
	}
}

// AsString coerces the value to a string.
func (v Value) AsString() (string, bool) {
	if v.Type == TypeString {
		return v.Str, true
	}
	return "", false
}

// String renders the value for logging and audit records.
func (v Value) String() string {
	switch v.Type {
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeBool:
		return strconv.FormatBool(v.Bool)
	case TypeString:
		return v.Str
	default:
		return "null"
	}
}
