package intrinsic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates Value.
type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindUnit
	KindBool
	KindPtr
)

// String returns the kind name used in error messages.
func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindPtr:
		return "ptr"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a value of the modeled language as seen by the intrinsics.
//
// Only the shapes the lock intrinsics care about are represented: integers
// (lock ids), the unit value (their result), and booleans and pointers,
// which exist so that calls passing the wrong kind can be expressed.
type Value struct {
	kind ValueKind
	i    int64
	b    bool
}

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Unit returns the unit value.
func Unit() Value { return Value{kind: KindUnit} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Ptr returns an opaque pointer value with the given address.
func Ptr(addr int64) Value { return Value{kind: KindPtr, i: addr} }

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// AsInt returns the integer payload and true for KindInt values.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// String renders the value as it appears in traces.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUnit:
		return "()"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindPtr:
		return fmt.Sprintf("ptr(0x%x)", v.i)
	default:
		return "<invalid>"
	}
}

// TypeKind discriminates Type.
type TypeKind uint8

const (
	TypeInt TypeKind = iota
	TypeUnit
	TypeBool
	TypePtr
)

// Type is a type of the modeled language as seen by the intrinsics.
//
// Integer types carry signedness and size in bytes (1, 2, 4, 8).
type Type struct {
	kind   TypeKind
	signed bool
	size   int
}

// IntType returns the integer type with the given signedness and byte size.
func IntType(signed bool, size int) Type {
	return Type{kind: TypeInt, signed: signed, size: size}
}

// UnitType returns the unit type ().
func UnitType() Type { return Type{kind: TypeUnit} }

// BoolType returns the boolean type.
func BoolType() Type { return Type{kind: TypeBool} }

// PtrType returns the raw pointer type.
func PtrType() Type { return Type{kind: TypePtr} }

// Kind returns the type's kind.
func (t Type) Kind() TypeKind { return t.kind }

// IsInt reports whether t is an integer type.
func (t Type) IsInt() bool { return t.kind == TypeInt }

// IsUnit reports whether t is the unit type.
func (t Type) IsUnit() bool { return t.kind == TypeUnit }

// Fits reports whether integer v is representable in integer type t.
func (t Type) Fits(v int64) bool {
	if t.kind != TypeInt {
		return false
	}
	bits := uint(t.size * 8)
	if bits == 0 || bits > 64 {
		return false
	}
	if t.signed {
		if bits == 64 {
			return true
		}
		limit := int64(1) << (bits - 1)
		return v >= -limit && v < limit
	}
	if v < 0 {
		return false
	}
	if bits == 64 {
		return true
	}
	return uint64(v) <= math.MaxUint64>>(64-bits)
}

// String renders the type in source form ("i32", "u64", "()", "bool", "ptr").
func (t Type) String() string {
	switch t.kind {
	case TypeInt:
		prefix := "u"
		if t.signed {
			prefix = "i"
		}
		return prefix + strconv.Itoa(t.size*8)
	case TypeUnit:
		return "()"
	case TypeBool:
		return "bool"
	case TypePtr:
		return "ptr"
	default:
		return "<invalid>"
	}
}

// ParseType parses the source form of a type. "unit" is accepted for "()",
// and "isize"/"usize" mean 8-byte integers.
func ParseType(s string) (Type, error) {
	switch s = strings.TrimSpace(s); s {
	case "()", "unit":
		return UnitType(), nil
	case "bool":
		return BoolType(), nil
	case "ptr":
		return PtrType(), nil
	case "isize":
		return IntType(true, 8), nil
	case "usize":
		return IntType(false, 8), nil
	}
	if len(s) >= 2 && (s[0] == 'i' || s[0] == 'u') {
		bits, err := strconv.Atoi(s[1:])
		if err == nil {
			switch bits {
			case 8, 16, 32, 64:
				return IntType(s[0] == 'i', bits/8), nil
			}
		}
	}
	return Type{}, fmt.Errorf("unknown type %q", s)
}

// Arg is one argument of an intrinsic call: a value with its declared type.
type Arg struct {
	Value Value
	Type  Type
}
