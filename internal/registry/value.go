package registry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Type is the primitive type tag of a parameter or value.
type Type uint8

// Supported primitive types.
const (
	// TypeNone marks groups, "report the declared type" reads, and values that
	// carry raw bytes already encoded for the target parameter.
	TypeNone Type = iota
	TypeBool
	TypeString
	// TypeBytes parameters are fixed width: a shorter write is zero-padded
	// and reads always return the full storage.
	TypeBytes
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
)

var typeNames = [...]string{
	TypeNone:    "none",
	TypeBool:    "bool",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeUint8:   "u8",
	TypeUint16:  "u16",
	TypeUint32:  "u32",
	TypeUint64:  "u64",
	TypeInt8:    "i8",
	TypeInt16:   "i16",
	TypeInt32:   "i32",
	TypeInt64:   "i64",
	TypeFloat32: "f32",
	TypeFloat64: "f64",
}

// String returns the short type name used in textual encodings ("u8", "string", ...).
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType converts a short type name back to a Type.
// Wide types are rejected when they are compiled out.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if n == name {
			t := Type(i)
			if !t.Supported() {
				return TypeNone, fmt.Errorf("%w: type %s not supported in this build", ErrConversion, name)
			}
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("%w: unknown type %q", ErrConversion, name)
}

// IsWide reports whether t is one of the build-gated 64-bit or float types.
func (t Type) IsWide() bool {
	switch t {
	case TypeUint64, TypeInt64, TypeFloat32, TypeFloat64:
		return true
	}
	return false
}

// Supported reports whether t can be used for a parameter in this build.
func (t Type) Supported() bool {
	if t == TypeNone || int(t) >= len(typeNames) {
		return false
	}
	return WideTypes || !t.IsWide()
}

// Size returns the fixed storage width of scalar types in bytes, or 0 for
// variable-length types (string, bytes) and TypeNone.
func (t Type) Size() int {
	switch t {
	case TypeBool, TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16:
		return 2
	case TypeUint32, TypeInt32, TypeFloat32:
		return 4
	case TypeUint64, TypeInt64, TypeFloat64:
		return 8
	}
	return 0
}

// Value is a typed view over a byte buffer.
//
// Buf is owned by whoever produced the value: a Value returned by Get aliases
// live instance memory and is only valid until the next mutation of that
// parameter; a Value passed to Set belongs to the caller.
//
// Encoding: integers and floats are little-endian fixed width, bool is a single
// byte 0 or 1, string is the text without terminator, bytes are the raw bytes.
type Value struct {
	Type Type
	Buf  []byte
}

// Clone returns a copy of v that owns its buffer.
func (v Value) Clone() Value {
	return Value{Type: v.Type, Buf: bytes.Clone(v.Buf)}
}

// Equal reports whether two values have the same type and bytes.
func (v Value) Equal(o Value) bool {
	return v.Type == o.Type && bytes.Equal(v.Buf, o.Buf)
}

// String renders v in its canonical string form, or a diagnostic placeholder
// if the value is malformed.
func (v Value) String() string {
	s, err := FormatString(v)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.Type, err)
	}
	return s
}

// BoolValue builds a bool Value.
func BoolValue(b bool) Value {
	if b {
		return Value{Type: TypeBool, Buf: []byte{1}}
	}
	return Value{Type: TypeBool, Buf: []byte{0}}
}

// StringValue builds a string Value.
func StringValue(s string) Value { return Value{Type: TypeString, Buf: []byte(s)} }

// BytesValue builds an opaque bytes Value. The slice is not copied. Writing
// fewer bytes than the parameter holds zero-fills the rest.
func BytesValue(b []byte) Value { return Value{Type: TypeBytes, Buf: b} }

// RawValue builds a TypeNone Value whose bytes are already encoded for the
// target parameter. Storage facilities that persist raw bytes yield these.
func RawValue(b []byte) Value { return Value{Type: TypeNone, Buf: b} }

// Uint8Value builds a u8 Value.
func Uint8Value(n uint8) Value { return Value{Type: TypeUint8, Buf: []byte{n}} }

// Uint16Value builds a u16 Value.
func Uint16Value(n uint16) Value {
	return Value{Type: TypeUint16, Buf: binary.LittleEndian.AppendUint16(nil, n)}
}

// Uint32Value builds a u32 Value.
func Uint32Value(n uint32) Value {
	return Value{Type: TypeUint32, Buf: binary.LittleEndian.AppendUint32(nil, n)}
}

// Uint64Value builds a u64 Value.
func Uint64Value(n uint64) Value {
	return Value{Type: TypeUint64, Buf: binary.LittleEndian.AppendUint64(nil, n)}
}

// Int8Value builds an i8 Value.
func Int8Value(n int8) Value { return Value{Type: TypeInt8, Buf: []byte{byte(n)}} }

// Int16Value builds an i16 Value.
func Int16Value(n int16) Value {
	return Value{Type: TypeInt16, Buf: binary.LittleEndian.AppendUint16(nil, uint16(n))}
}

// Int32Value builds an i32 Value.
func Int32Value(n int32) Value {
	return Value{Type: TypeInt32, Buf: binary.LittleEndian.AppendUint32(nil, uint32(n))}
}

// Int64Value builds an i64 Value.
func Int64Value(n int64) Value {
	return Value{Type: TypeInt64, Buf: binary.LittleEndian.AppendUint64(nil, uint64(n))}
}

// Float32Value builds an f32 Value.
func Float32Value(f float32) Value {
	return Value{Type: TypeFloat32, Buf: binary.LittleEndian.AppendUint32(nil, math.Float32bits(f))}
}

// Float64Value builds an f64 Value.
func Float64Value(f float64) Value {
	return Value{Type: TypeFloat64, Buf: binary.LittleEndian.AppendUint64(nil, math.Float64bits(f))}
}

// checkScalar verifies v has type t and a buffer of exactly t's width.
func (v Value) checkScalar(t Type) error {
	if v.Type != t {
		return fmt.Errorf("%w: value is %s, not %s", ErrTypeMismatch, v.Type, t)
	}
	if len(v.Buf) != t.Size() {
		return fmt.Errorf("%w: %s value has %d bytes, want %d", ErrConversion, t, len(v.Buf), t.Size())
	}
	return nil
}

// Bool decodes a bool value.
func (v Value) Bool() (bool, error) {
	if err := v.checkScalar(TypeBool); err != nil {
		return false, err
	}
	return v.Buf[0] != 0, nil
}

// Text decodes a string value. A trailing NUL and anything after it is dropped.
func (v Value) Text() (string, error) {
	if v.Type != TypeString {
		return "", fmt.Errorf("%w: value is %s, not %s", ErrTypeMismatch, v.Type, TypeString)
	}
	return string(cstring(v.Buf)), nil
}

// Uint8 decodes a u8 value.
func (v Value) Uint8() (uint8, error) {
	if err := v.checkScalar(TypeUint8); err != nil {
		return 0, err
	}
	return v.Buf[0], nil
}

// Uint16 decodes a u16 value.
func (v Value) Uint16() (uint16, error) {
	if err := v.checkScalar(TypeUint16); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.Buf), nil
}

// Uint32 decodes a u32 value.
func (v Value) Uint32() (uint32, error) {
	if err := v.checkScalar(TypeUint32); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v.Buf), nil
}

// Uint64 decodes a u64 value.
func (v Value) Uint64() (uint64, error) {
	if err := v.checkScalar(TypeUint64); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v.Buf), nil
}

// Int8 decodes an i8 value.
func (v Value) Int8() (int8, error) {
	if err := v.checkScalar(TypeInt8); err != nil {
		return 0, err
	}
	return int8(v.Buf[0]), nil
}

// Int16 decodes an i16 value.
func (v Value) Int16() (int16, error) {
	if err := v.checkScalar(TypeInt16); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(v.Buf)), nil
}

// Int32 decodes an i32 value.
func (v Value) Int32() (int32, error) {
	if err := v.checkScalar(TypeInt32); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(v.Buf)), nil
}

// Int64 decodes an i64 value.
func (v Value) Int64() (int64, error) {
	if err := v.checkScalar(TypeInt64); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v.Buf)), nil
}

// Float32 decodes an f32 value.
func (v Value) Float32() (float32, error) {
	if err := v.checkScalar(TypeFloat32); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(v.Buf)), nil
}

// Float64 decodes an f64 value.
func (v Value) Float64() (float64, error) {
	if err := v.checkScalar(TypeFloat64); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.Buf)), nil
}

// cstring returns b up to (not including) its first NUL byte.
func cstring(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
