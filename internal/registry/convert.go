package registry

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// FormatString renders v in its canonical string form.
//
// Integers are decimal, bool is "0" or "1", floats use the shortest
// representation that round-trips at their width, strings are returned as-is
// and bytes are standard base64.
func FormatString(v Value) (string, error) {
	switch v.Type {
	case TypeString:
		return string(cstring(v.Buf)), nil
	case TypeBytes:
		return base64.StdEncoding.EncodeToString(v.Buf), nil
	case TypeNone:
		return "", fmt.Errorf("%w: untyped value has no string form", ErrConversion)
	}
	if !v.Type.Supported() {
		return "", fmt.Errorf("%w: type %s not supported in this build", ErrConversion, v.Type)
	}
	if len(v.Buf) != v.Type.Size() {
		return "", fmt.Errorf("%w: %s value has %d bytes, want %d", ErrConversion, v.Type, len(v.Buf), v.Type.Size())
	}

	b := v.Buf
	switch v.Type {
	case TypeBool:
		switch b[0] {
		case 0:
			return "0", nil
		case 1:
			return "1", nil
		}
		return "", fmt.Errorf("%w: bool byte %d", ErrConversion, b[0])
	case TypeUint8:
		return strconv.FormatUint(uint64(b[0]), 10), nil
	case TypeUint16:
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint16(b)), 10), nil
	case TypeUint32:
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b)), 10), nil
	case TypeUint64:
		return strconv.FormatUint(binary.LittleEndian.Uint64(b), 10), nil
	case TypeInt8:
		return strconv.FormatInt(int64(int8(b[0])), 10), nil
	case TypeInt16:
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(b))), 10), nil
	case TypeInt32:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(b))), 10), nil
	case TypeInt64:
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(b)), 10), nil
	case TypeFloat32:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), 'g', -1, 32), nil
	case TypeFloat64:
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)), 'g', -1, 64), nil
	}
	return "", fmt.Errorf("%w: unknown type %s", ErrConversion, v.Type)
}

// FormatInto writes the canonical string form of v into dst and returns the
// number of bytes written. It fails with ErrConversion, writing nothing, if dst
// is too small. Output is never truncated.
func FormatInto(v Value, dst []byte) (int, error) {
	s, err := FormatString(v)
	if err != nil {
		return 0, err
	}
	if len(s) > len(dst) {
		return 0, fmt.Errorf("%w: %d bytes needed, buffer holds %d", ErrConversion, len(s), len(dst))
	}
	return copy(dst, s), nil
}

// ParseValue parses s as a value of type t.
//
// Numeric parsing is strict: the whole string must be consumed and the result
// must fit t's width. Bool accepts only "0" and "1". Bytes are decoded from
// standard base64.
func ParseValue(t Type, s string) (Value, error) {
	if !t.Supported() {
		return Value{}, fmt.Errorf("%w: type %s not supported in this build", ErrConversion, t)
	}

	switch t {
	case TypeString:
		return StringValue(s), nil
	case TypeBytes:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bytes: %v", ErrConversion, err)
		}
		return BytesValue(b), nil
	case TypeBool:
		switch s {
		case "0":
			return BoolValue(false), nil
		case "1":
			return BoolValue(true), nil
		}
		return Value{}, fmt.Errorf("%w: bool must be 0 or 1, got %q", ErrConversion, s)
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		n, err := strconv.ParseUint(s, 10, t.Size()*8)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s: %v", ErrConversion, t, err)
		}
		return uintValue(t, n), nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		n, err := strconv.ParseInt(s, 10, t.Size()*8)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s: %v", ErrConversion, t, err)
		}
		return intValue(t, n), nil
	case TypeFloat32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s: %v", ErrConversion, t, err)
		}
		return Float32Value(float32(f)), nil
	case TypeFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s: %v", ErrConversion, t, err)
		}
		return Float64Value(f), nil
	}
	return Value{}, fmt.Errorf("%w: unknown type %s", ErrConversion, t)
}

// Convert converts v to type t by way of its canonical string form.
// There is no binary reinterpretation: u8 300 cannot exist, and "3.5" will not
// parse as an integer.
func Convert(v Value, t Type) (Value, error) {
	if v.Type == t {
		return v, nil
	}
	s, err := FormatString(v)
	if err != nil {
		return Value{}, err
	}
	return ParseValue(t, s)
}

func uintValue(t Type, n uint64) Value {
	switch t {
	case TypeUint8:
		return Uint8Value(uint8(n))
	case TypeUint16:
		return Uint16Value(uint16(n))
	case TypeUint32:
		return Uint32Value(uint32(n))
	}
	return Uint64Value(n)
}

func intValue(t Type, n int64) Value {
	switch t {
	case TypeInt8:
		return Int8Value(int8(n))
	case TypeInt16:
		return Int16Value(int16(n))
	case TypeInt32:
		return Int32Value(int32(n))
	}
	return Int64Value(n)
}

// decode builds a Value of type t over live storage. The returned buffer
// aliases storage. Bytes values span the whole buffer.
func decode(t Type, storage []byte) (Value, error) {
	switch t {
	case TypeString:
		return Value{Type: t, Buf: cstring(storage)}, nil
	case TypeBytes:
		return Value{Type: t, Buf: storage}, nil
	}
	n := t.Size()
	if n == 0 || len(storage) < n {
		return Value{}, fmt.Errorf("%w: %d bytes of storage for %s", ErrResolution, len(storage), t)
	}
	return Value{Type: t, Buf: storage[:n]}, nil
}

// encode writes v into live storage of a parameter declared as t.
//
// A value of the parameter's own type is copied with length checks. A TypeNone
// value is raw bytes already in t's encoding. Anything else is converted
// through its canonical string form into a scratch buffer sized to storage
// first, so a failed conversion leaves storage untouched.
func encode(t Type, storage []byte, v Value) error {
	if v.Type != t && v.Type != TypeNone {
		conv, err := Convert(v, t)
		if err != nil {
			return err
		}
		scratch := make([]byte, len(storage))
		if err := encode(t, scratch, conv); err != nil {
			return err
		}
		copy(storage, scratch)
		return nil
	}

	switch t {
	case TypeString:
		text := cstring(v.Buf)
		if len(text) >= len(storage) {
			return fmt.Errorf("%w: string of %d bytes exceeds capacity %d", ErrConversion, len(text), len(storage)-1)
		}
		n := copy(storage, text)
		clear(storage[n:])
		return nil
	case TypeBytes:
		if len(v.Buf) > len(storage) {
			return fmt.Errorf("%w: %d bytes exceed storage of %d", ErrConversion, len(v.Buf), len(storage))
		}
		n := copy(storage, v.Buf)
		clear(storage[n:])
		return nil
	}

	size := t.Size()
	if size == 0 || len(storage) < size {
		return fmt.Errorf("%w: %d bytes of storage for %s", ErrResolution, len(storage), t)
	}
	if len(v.Buf) != size {
		return fmt.Errorf("%w: %s value has %d bytes, want %d", ErrConversion, t, len(v.Buf), size)
	}
	if t == TypeBool && v.Buf[0] > 1 {
		return fmt.Errorf("%w: bool byte %d", ErrConversion, v.Buf[0])
	}
	copy(storage, v.Buf)
	return nil
}
