package registry

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBScenario(t *testing.T) {
	r, led := newRGBRegistry(t)

	red, err := r.GetUint8(rgbPath(0, itemRed))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), red)

	require.NoError(t, r.Set(rgbPath(0, itemGreen), Uint8Value(4)))
	green, err := r.GetUint8(rgbPath(0, itemGreen))
	require.NoError(t, err)
	assert.Equal(t, uint8(4), green)
	assert.Equal(t, [3]byte{0, 4, 70}, led.channels, "set writes live instance memory")

	blue, err := r.Get(rgbPath(0, itemBlue))
	require.NoError(t, err)
	assert.Equal(t, TypeUint8, blue.Type)
	assert.Equal(t, []byte{70}, blue.Buf)
}

func TestRoundTripMinMax(t *testing.T) {
	r := newTypesRegistry(t)

	cases := map[Type][]Value{
		TypeBool:   {BoolValue(false), BoolValue(true)},
		TypeString: {StringValue(""), StringValue(strings.Repeat("x", stringCap-1))},
		TypeBytes:  {BytesValue([]byte{0, 0, 0, 0}), BytesValue([]byte{0xff, 0xff, 0xff, 0xff})},
		TypeUint8:  {Uint8Value(0), Uint8Value(math.MaxUint8)},
		TypeUint16: {Uint16Value(0), Uint16Value(math.MaxUint16)},
		TypeUint32: {Uint32Value(0), Uint32Value(math.MaxUint32)},
		TypeInt8:   {Int8Value(math.MinInt8), Int8Value(math.MaxInt8)},
		TypeInt16:  {Int16Value(math.MinInt16), Int16Value(math.MaxInt16)},
		TypeInt32:  {Int32Value(math.MinInt32), Int32Value(math.MaxInt32)},
	}
	addWideCases(cases)

	for _, ti := range typeItems() {
		values, ok := cases[ti.t]
		require.True(t, ok, "missing cases for %s", ti.t)
		for _, v := range values {
			p := typesPath(ti.id)
			require.NoError(t, r.Set(p, v), "%s %v", ti.t, v)
			got, err := r.Get(p)
			require.NoError(t, err)
			assert.True(t, v.Equal(got), "%s: set %x, got %x", ti.t, v.Buf, got.Buf)
		}
	}
}

func TestStringCapacity(t *testing.T) {
	r := newTypesRegistry(t)
	p := typesPath(2)

	fits := strings.Repeat("a", stringCap-1)
	require.NoError(t, r.SetString(p, fits))
	got, err := r.GetString(p)
	require.NoError(t, err)
	assert.Equal(t, fits, got)

	err = r.SetString(p, strings.Repeat("b", stringCap))
	assert.ErrorIs(t, err, ErrConversion)

	got, err = r.GetString(p)
	require.NoError(t, err)
	assert.Equal(t, fits, got, "failed set must leave the old value")
}

func TestSetCoerces(t *testing.T) {
	r := newTypesRegistry(t)

	require.NoError(t, r.Set(typesPath(5), StringValue("513")))
	n, err := r.GetUint16(typesPath(5))
	require.NoError(t, err)
	assert.Equal(t, uint16(513), n)

	require.NoError(t, r.Set(typesPath(4), Int32Value(200)))
	u, err := r.GetUint8(typesPath(4))
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u)

	assert.ErrorIs(t, r.Set(typesPath(4), Int32Value(-1)), ErrConversion)
	assert.ErrorIs(t, r.Set(typesPath(1), StringValue("yes")), ErrConversion)

	require.NoError(t, r.Set(typesPath(2), Int16Value(-7)))
	s, err := r.GetString(typesPath(2))
	require.NoError(t, err)
	assert.Equal(t, "-7", s)
}

func TestGetNeverCoerces(t *testing.T) {
	r, _ := newRGBRegistry(t)

	_, err := r.GetTyped(rgbPath(0, itemRed), TypeUint16)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = r.GetString(rgbPath(0, itemRed))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	v, err := r.GetTyped(rgbPath(0, itemRed), TypeNone)
	require.NoError(t, err)
	assert.Equal(t, TypeUint8, v.Type)
}

func TestGetGroupFails(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterSchema(NamespaceSys, nodeSchema(newNodeCells())))
	_, err := r.RegisterInstance(NamespaceSys, nodeSchemaID, &Instance{})
	require.NoError(t, err)

	_, err = r.Get(ItemPath(NamespaceSys, nodeSchemaID, 0, 0))
	assert.ErrorIs(t, err, ErrResolution)

	_, err = r.Get(ItemPath(NamespaceSys, nodeSchemaID, 0, 0, 2))
	assert.ErrorIs(t, err, ErrResolution)

	_, err = r.Get(InstancePath(NamespaceSys, nodeSchemaID, 0))
	assert.ErrorIs(t, err, ErrResolution)
}

func TestNestedGroups(t *testing.T) {
	c := newNodeCells()
	r := New()
	require.NoError(t, r.RegisterSchema(NamespaceSys, nodeSchema(c)))
	_, err := r.RegisterInstance(NamespaceSys, nodeSchemaID, &Instance{Name: "self"})
	require.NoError(t, err)

	port := ItemPath(NamespaceSys, nodeSchemaID, 0, 0, 0)
	tls := ItemPath(NamespaceSys, nodeSchemaID, 0, 0, 2, 0)
	debug := ItemPath(NamespaceSys, nodeSchemaID, 0, 1)

	require.NoError(t, r.SetUint16(port, 8080))
	require.NoError(t, r.SetBool(tls, true))
	require.NoError(t, r.SetBool(debug, false))

	got, err := r.GetUint16(port)
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), got)
	assert.Equal(t, []byte{1}, c["[0 2 0]"])

	// Parameter 0 of group "net" and parameter 0 of group "tls" are distinct.
	enabled, err := r.GetBool(tls)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestResolutionErrors(t *testing.T) {
	r, _ := newRGBRegistry(t)

	for name, p := range map[string]Path{
		"unknown namespace": ItemPath(7, rgbSchemaID, 0, itemRed),
		"unknown schema":    ItemPath(NamespaceApp, 9, 0, itemRed),
		"instance range":    ItemPath(NamespaceApp, rgbSchemaID, 1, itemRed),
		"unknown item":      ItemPath(NamespaceApp, rgbSchemaID, 0, 9),
		"after parameter":   ItemPath(NamespaceApp, rgbSchemaID, 0, itemRed, 0),
		"schema level":      SchemaPath(NamespaceApp, rgbSchemaID),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Get(p)
			assert.ErrorIs(t, err, ErrResolution)
			assert.ErrorIs(t, r.Set(p, Uint8Value(1)), ErrResolution)
		})
	}
}

func TestMappingWithoutStorage(t *testing.T) {
	r := New()
	s := rgbSchema()
	s.Items = append(s.Items, Param(9, "white", TypeUint8))
	require.NoError(t, r.RegisterSchema(NamespaceApp, s))
	_, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, &Instance{Data: &rgbLED{}})
	require.NoError(t, err)

	_, err = r.Get(rgbPath(0, 9))
	assert.ErrorIs(t, err, ErrResolution)
}

func TestRegisterSchemaValidation(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterSchema(NamespaceApp, rgbSchema()))
	assert.ErrorIs(t, r.RegisterSchema(NamespaceApp, rgbSchema()), ErrRegistration)
	require.NoError(t, r.RegisterSchema(NamespaceSys, rgbSchema()), "schema ids are per namespace")

	dup := rgbSchema()
	dup.ID = 1
	dup.Items = append(dup.Items, Param(itemRed, "again", TypeUint8))
	assert.ErrorIs(t, r.RegisterSchema(NamespaceApp, dup), ErrRegistration)

	noMap := rgbSchema()
	noMap.ID = 2
	noMap.Mapping = nil
	assert.ErrorIs(t, r.RegisterSchema(NamespaceApp, noMap), ErrRegistration)

	untyped := rgbSchema()
	untyped.ID = 3
	untyped.Items = []Item{{ID: 0, Name: "x"}}
	assert.ErrorIs(t, r.RegisterSchema(NamespaceApp, untyped), ErrRegistration)

	assert.ErrorIs(t, r.RegisterSchema(5, rgbSchema()), ErrResolution)

	assert.Panics(t, func() { _ = r.RegisterSchema(NamespaceApp, nil) })
	assert.Panics(t, func() { _, _ = r.RegisterInstance(NamespaceApp, rgbSchemaID, nil) })
	assert.Panics(t, func() { r.RegisterLoadSource(nil) })
	assert.Panics(t, func() { r.RegisterSaveDestination(nil) })
}

func TestInstanceIDsAreDense(t *testing.T) {
	r, _ := newRGBRegistry(t)
	for want := InstanceID(1); want < 5; want++ {
		inst := &Instance{Data: &rgbLED{}}
		id, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, inst)
		require.NoError(t, err)
		assert.Equal(t, want, id)
		assert.Equal(t, want, inst.ID())
	}

	inst := &Instance{Data: &rgbLED{}}
	_, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, inst)
	require.NoError(t, err)
	_, err = r.RegisterInstance(NamespaceApp, rgbSchemaID, inst)
	assert.ErrorIs(t, err, ErrRegistration)

	_, err = r.RegisterInstance(NamespaceApp, 42, &Instance{})
	assert.ErrorIs(t, err, ErrResolution)
}

func TestOnChange(t *testing.T) {
	r, _ := newRGBRegistry(t)

	var got []string
	r.OnChange(func(p Path, v Value) {
		got = append(got, p.String()+"="+v.String())
	})

	require.NoError(t, r.SetUint8(rgbPath(0, itemRed), 9))
	require.Error(t, r.Set(rgbPath(0, itemRed), StringValue("x")))
	assert.Equal(t, []string{"1/0/0/0=9"}, got)
}

func TestResolveNamed(t *testing.T) {
	r, _ := newRGBRegistry(t)

	p, err := r.ResolveNamed("app/rgb/status/green")
	require.NoError(t, err)
	assert.Equal(t, "1/0/0/1", p.String())

	p, err = r.ResolveNamed("app/rgb/0/2")
	require.NoError(t, err)
	assert.Equal(t, "1/0/0/2", p.String())

	p, err = r.ResolveNamed("1/0")
	require.NoError(t, err)
	assert.Equal(t, LevelSchema, p.Level())

	for _, bad := range []string{"usr", "app/led", "app/rgb/5", "app/rgb/0/white"} {
		_, err := r.ResolveNamed(bad)
		assert.ErrorIs(t, err, ErrResolution, bad)
	}

	name, err := r.NameOf(MustParsePath("1/0/0/1"))
	require.NoError(t, err)
	assert.Equal(t, "app/rgb/status/green", name)
}

func TestSetParsedAndGetFormatted(t *testing.T) {
	r, _ := newRGBRegistry(t)
	require.NoError(t, r.SetParsed(rgbPath(0, itemBlue), "12"))
	s, err := r.GetFormatted(rgbPath(0, itemBlue))
	require.NoError(t, err)
	assert.Equal(t, "12", s)

	assert.ErrorIs(t, r.SetParsed(rgbPath(0, itemBlue), "1200"), ErrConversion)
}

func TestBytesParamIsFixedWidth(t *testing.T) {
	r := newTypesRegistry(t)
	p := typesPath(3)

	full := BytesValue([]byte{1, 2, 3, 4})
	require.NoError(t, r.Set(p, full))
	v, err := r.Get(p)
	require.NoError(t, err)
	assert.True(t, full.Equal(v))

	require.NoError(t, r.Set(p, BytesValue([]byte{7, 8})))
	b, err := r.GetBytes(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8, 0, 0}, b, "short writes are zero-padded to the parameter width")

	assert.ErrorIs(t, r.Set(p, BytesValue(make([]byte, bytesLen+1))), ErrConversion)
}
