package event

import (
	"fmt"
	"math"
)

// Kind is the type tag of a [Value].
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindGroup:
		return "group"
	}
	return "invalid"
}

// Value is a tagged union over the closed set of field types the native
// backends can represent.
//
// Numeric values share the num slot; strings, byte slices and nested groups
// each have their own to keep the zero value cheap to copy.
type Value struct {
	kind Kind
	num  uint64
	str  string
	buf  []byte
	grp  []Field
}

// Field is a named [Value].
type Field struct {
	Name  string
	Value Value
}

func BoolValue(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

func Int8Value(v int8) Value   { return Value{kind: KindInt8, num: uint64(v)} }
func Int16Value(v int16) Value { return Value{kind: KindInt16, num: uint64(v)} }
func Int32Value(v int32) Value { return Value{kind: KindInt32, num: uint64(v)} }
func Int64Value(v int64) Value { return Value{kind: KindInt64, num: uint64(v)} }

func Uint8Value(v uint8) Value   { return Value{kind: KindUint8, num: uint64(v)} }
func Uint16Value(v uint16) Value { return Value{kind: KindUint16, num: uint64(v)} }
func Uint32Value(v uint32) Value { return Value{kind: KindUint32, num: uint64(v)} }
func Uint64Value(v uint64) Value { return Value{kind: KindUint64, num: v} }

func Float32Value(v float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(v))}
}

func Float64Value(v float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(v)}
}

func StringValue(v string) Value { return Value{kind: KindString, str: v} }

func BytesValue(v []byte) Value { return Value{kind: KindBytes, buf: v} }

// GroupValue nests fields under a single named field. Backends encode it as
// an ETW struct or an EventHeader struct-encoded field.
func GroupValue(fields ...Field) Value { return Value{kind: KindGroup, grp: fields} }

// SmartValue converts v to the closest Value representation, falling back to
// fmt.Sprintf for unknown types.
func SmartValue(v any) Value {
	switch t := v.(type) {
	case bool:
		return BoolValue(t)
	case int:
		return Int64Value(int64(t))
	case int8:
		return Int8Value(t)
	case int16:
		return Int16Value(t)
	case int32:
		return Int32Value(t)
	case int64:
		return Int64Value(t)
	case uint:
		return Uint64Value(uint64(t))
	case uint8:
		return Uint8Value(t)
	case uint16:
		return Uint16Value(t)
	case uint32:
		return Uint32Value(t)
	case uint64:
		return Uint64Value(t)
	case float32:
		return Float32Value(t)
	case float64:
		return Float64Value(t)
	case string:
		return StringValue(t)
	case []byte:
		return BytesValue(t)
	case Value:
		return t
	}
	return StringValue(fmt.Sprintf("%v", v))
}

func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean value. Only valid for [KindBool].
func (v Value) Bool() bool { return v.num != 0 }

// Int returns the signed integer value, widened to 64 bits.
// Only valid for the signed integer kinds.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt8:
		return int64(int8(v.num))
	case KindInt16:
		return int64(int16(v.num))
	case KindInt32:
		return int64(int32(v.num))
	}
	return int64(v.num)
}

// Uint returns the unsigned integer value, widened to 64 bits.
// Only valid for the unsigned integer kinds.
func (v Value) Uint() uint64 { return v.num }

// Float returns the floating point value. Only valid for [KindFloat32] and
// [KindFloat64].
func (v Value) Float() float64 {
	if v.kind == KindFloat32 {
		return float64(math.Float32frombits(uint32(v.num)))
	}
	return math.Float64frombits(v.num)
}

// Str returns the string value. Only valid for [KindString].
func (v Value) Str() string { return v.str }

// Bytes returns the byte slice value. Only valid for [KindBytes].
// The slice is not copied.
func (v Value) Bytes() []byte { return v.buf }

// Group returns the nested fields. Only valid for [KindGroup].
// The slice is not copied.
func (v Value) Group() []Field { return v.grp }

// Bits returns the raw numeric payload; used by the encoders to write
// fixed-width values without re-switching on the concrete type.
func (v Value) Bits() uint64 { return v.num }

// Equal reports whether two values have the same kind and contents.
// Satisfies the Equal convention used by github.com/google/go-cmp.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBytes:
		if len(v.buf) != len(o.buf) {
			return false
		}
		for i := range v.buf {
			if v.buf[i] != o.buf[i] {
				return false
			}
		}
		return true
	case KindGroup:
		if len(v.grp) != len(o.grp) {
			return false
		}
		for i := range v.grp {
			if v.grp[i].Name != o.grp[i].Name || !v.grp[i].Value.Equal(o.grp[i].Value) {
				return false
			}
		}
		return true
	}
	return v.num == o.num
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return fmt.Sprintf("%d", v.Int())
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return fmt.Sprintf("%d", v.Uint())
	case KindFloat32, KindFloat64:
		return fmt.Sprintf("%g", v.Float())
	case KindString:
		return v.str
	case KindBytes:
		return fmt.Sprintf("%x", v.buf)
	case KindGroup:
		return fmt.Sprintf("%v", v.grp)
	}
	return "<invalid>"
}
