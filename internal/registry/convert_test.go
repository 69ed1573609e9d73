package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		in      string
		want    Value
		wantErr error
	}{
		{"bool false", TypeBool, "0", BoolValue(false), nil},
		{"bool true", TypeBool, "1", BoolValue(true), nil},
		{"bool word", TypeBool, "true", Value{}, ErrConversion},
		{"bool two", TypeBool, "2", Value{}, ErrConversion},
		{"u8 max", TypeUint8, "255", Uint8Value(255), nil},
		{"u8 overflow", TypeUint8, "256", Value{}, ErrConversion},
		{"u8 negative", TypeUint8, "-1", Value{}, ErrConversion},
		{"u8 trailing", TypeUint8, "12x", Value{}, ErrConversion},
		{"u8 empty", TypeUint8, "", Value{}, ErrConversion},
		{"u16", TypeUint16, "65535", Uint16Value(65535), nil},
		{"u32", TypeUint32, "4294967295", Uint32Value(4294967295), nil},
		{"u32 overflow", TypeUint32, "4294967296", Value{}, ErrConversion},
		{"i8 min", TypeInt8, "-128", Int8Value(-128), nil},
		{"i8 underflow", TypeInt8, "-129", Value{}, ErrConversion},
		{"i16", TypeInt16, "-32768", Int16Value(-32768), nil},
		{"i32", TypeInt32, "2147483647", Int32Value(2147483647), nil},
		{"i32 space", TypeInt32, " 1", Value{}, ErrConversion},
		{"string", TypeString, "hello", StringValue("hello"), nil},
		{"bytes", TypeBytes, "AQID", BytesValue([]byte{1, 2, 3}), nil},
		{"bytes invalid", TypeBytes, "!!", Value{}, ErrConversion},
		{"none", TypeNone, "1", Value{}, ErrConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.typ, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v (%x)", got, got.Buf)
		})
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{BoolValue(true), "1"},
		{Uint8Value(7), "7"},
		{Uint16Value(1000), "1000"},
		{Int8Value(-5), "-5"},
		{Int32Value(-2147483648), "-2147483648"},
		{StringValue("abc"), "abc"},
		{Value{Type: TypeString, Buf: []byte("ab\x00junk")}, "ab"},
		{BytesValue([]byte{0xff, 0}), "/wA="},
	}
	for _, tt := range tests {
		got, err := FormatString(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatString(Value{Type: TypeBool, Buf: []byte{2}})
	assert.ErrorIs(t, err, ErrConversion)

	_, err = FormatString(Value{Type: TypeUint16, Buf: []byte{1}})
	assert.ErrorIs(t, err, ErrConversion)
}

func TestFormatIntoNeverTruncates(t *testing.T) {
	dst := make([]byte, 3)
	n, err := FormatInto(Uint16Value(123), dst)
	require.NoError(t, err)
	assert.Equal(t, "123", string(dst[:n]))

	dst = []byte("xyz")
	_, err = FormatInto(Uint16Value(1234), dst)
	assert.ErrorIs(t, err, ErrConversion)
	assert.Equal(t, "xyz", string(dst), "destination must be untouched on failure")
}

func TestConvertGoesThroughString(t *testing.T) {
	v, err := Convert(Uint16Value(200), TypeUint8)
	require.NoError(t, err)
	assert.True(t, Uint8Value(200).Equal(v))

	_, err = Convert(Uint16Value(300), TypeUint8)
	assert.ErrorIs(t, err, ErrConversion)

	v, err = Convert(StringValue("42"), TypeInt16)
	require.NoError(t, err)
	assert.True(t, Int16Value(42).Equal(v))

	v, err = Convert(Uint8Value(1), TypeBool)
	require.NoError(t, err)
	assert.True(t, BoolValue(true).Equal(v))

	v, err = Convert(Int8Value(-3), TypeString)
	require.NoError(t, err)
	assert.Equal(t, "-3", string(v.Buf))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("U16")
	require.NoError(t, err)
	assert.Equal(t, TypeUint16, typ)

	_, err = ParseType("none")
	assert.True(t, errors.Is(err, ErrConversion))

	_, err = ParseType("complex")
	assert.ErrorIs(t, err, ErrConversion)
}

func TestEncodeString(t *testing.T) {
	storage := []byte("XXXXXXXX")
	require.NoError(t, encode(TypeString, storage, StringValue("hi")))
	assert.Equal(t, []byte("hi\x00\x00\x00\x00\x00\x00"), storage)

	err := encode(TypeString, storage, StringValue("12345678"))
	assert.ErrorIs(t, err, ErrConversion)
	assert.Equal(t, "hi", string(cstring(storage)), "failed write must not modify storage")
}

func TestEncodeBytesZeroFills(t *testing.T) {
	storage := []byte{9, 9, 9, 9}
	require.NoError(t, encode(TypeBytes, storage, BytesValue([]byte{1, 2})))
	assert.Equal(t, []byte{1, 2, 0, 0}, storage)

	assert.ErrorIs(t, encode(TypeBytes, storage, BytesValue(make([]byte, 5))), ErrConversion)
}

func TestEncodeRaw(t *testing.T) {
	storage := make([]byte, 2)
	require.NoError(t, encode(TypeUint16, storage, RawValue([]byte{0x34, 0x12})))
	v, err := decode(TypeUint16, storage)
	require.NoError(t, err)
	n, err := v.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), n)

	assert.ErrorIs(t, encode(TypeUint16, storage, RawValue([]byte{1})), ErrConversion)
}
