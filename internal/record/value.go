package record

import "fmt"

// Kind tags which variant a Value currently holds.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBool
)

// DataType is the declared type of a schema column, as written in a
// schema document ("int", "float", "string", "bool").
type DataType int

const (
	TypeInt DataType = iota
	TypeFloat
	TypeString
	TypeBool
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseDataType converts a schema document's type string into a DataType.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string":
		return TypeString, nil
	case "bool":
		return TypeBool, nil
	default:
		return 0, fmt.Errorf("unknown data type: %q", s)
	}
}

// Value is a tagged union over exactly four variants. Unlike the
// teacher's pointer-based Constant (*int/*string), it is a flat,
// comparable struct: every field is itself comparable, so Value can be
// compared with == (as internal/exec's hash join does for its keys) and
// used directly as a Go map key without a custom Equals method, while
// still giving each variant its own typed zero value.
type Value struct {
	Kind  Kind
	Int   int32
	Float float32
	Str   string
	Bool  bool
}

func NewInt(v int32) Value     { return Value{Kind: KindInt, Int: v} }
func NewFloat(v float32) Value { return Value{Kind: KindFloat, Float: v} }
func NewString(v string) Value { return Value{Kind: KindString, Str: v} }
func NewBool(v bool) Value     { return Value{Kind: KindBool, Bool: v} }

// IsNumeric reports whether the value holds an int or a float.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// Float64 returns the value's numeric payload widened to double
// precision. Only valid when IsNumeric() is true.
func (v Value) Float64() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return float64(v.Float)
}

// String renders the value the way the original's printValue does:
// just the bare textual form, no type annotation.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return "<invalid>"
	}
}

// DataType returns the DataType that corresponds to this value's Kind.
func (v Value) DataType() DataType {
	switch v.Kind {
	case KindInt:
		return TypeInt
	case KindFloat:
		return TypeFloat
	case KindString:
		return TypeString
	case KindBool:
		return TypeBool
	default:
		return TypeString
	}
}
