package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// rgbLED is the backing memory of one rgb instance.
type rgbLED struct {
	channels [3]byte
}

const (
	rgbSchemaID SchemaID = 0
	itemRed     ItemID   = 0
	itemGreen   ItemID   = 1
	itemBlue    ItemID   = 2
)

func rgbSchema() *Schema {
	return &Schema{
		ID:   rgbSchemaID,
		Name: "rgb",
		Items: []Item{
			Param(itemRed, "red", TypeUint8),
			Param(itemGreen, "green", TypeUint8),
			Param(itemBlue, "blue", TypeUint8),
		},
		Mapping: MappingFunc(func(id ItemID, inst *Instance) []byte {
			led := inst.Data.(*rgbLED)
			if int(id) >= len(led.channels) {
				return nil
			}
			return led.channels[id : id+1]
		}),
	}
}

// newRGBRegistry registers the rgb schema in app with one instance (0, 255, 70).
func newRGBRegistry(t *testing.T) (*Registry, *rgbLED) {
	t.Helper()
	r := New()
	require.NoError(t, r.RegisterSchema(NamespaceApp, rgbSchema()))
	led := &rgbLED{channels: [3]byte{0, 255, 70}}
	id, err := r.RegisterInstance(NamespaceApp, rgbSchemaID, &Instance{Name: "status", Data: led})
	require.NoError(t, err)
	require.Equal(t, InstanceID(0), id)
	return r, led
}

func rgbPath(inst InstanceID, item ItemID) Path {
	return ItemPath(NamespaceApp, rgbSchemaID, inst, item)
}

// cells is a parameter store keyed by item id with fixed-size buffers.
type cells map[ItemID][]byte

const (
	typesSchemaID SchemaID = 7
	stringCap              = 8
	bytesLen               = 4
)

// typeItem pairs a parameter id with its type for the all-types schema.
type typeItem struct {
	id ItemID
	t  Type
}

func typeItems() []typeItem {
	items := []typeItem{
		{1, TypeBool}, {2, TypeString}, {3, TypeBytes},
		{4, TypeUint8}, {5, TypeUint16}, {6, TypeUint32},
		{7, TypeInt8}, {8, TypeInt16}, {9, TypeInt32},
	}
	if WideTypes {
		items = append(items, typeItem{10, TypeUint64}, typeItem{11, TypeInt64},
			typeItem{12, TypeFloat32}, typeItem{13, TypeFloat64})
	}
	return items
}

func newCells() cells {
	c := cells{}
	for _, ti := range typeItems() {
		switch ti.t {
		case TypeString:
			c[ti.id] = make([]byte, stringCap)
		case TypeBytes:
			c[ti.id] = make([]byte, bytesLen)
		default:
			c[ti.id] = make([]byte, ti.t.Size())
		}
	}
	return c
}

func typesSchema() *Schema {
	s := &Schema{
		ID:   typesSchemaID,
		Name: "types",
		Mapping: MappingFunc(func(id ItemID, inst *Instance) []byte {
			return inst.Data.(cells)[id]
		}),
	}
	for _, ti := range typeItems() {
		s.Items = append(s.Items, Param(ti.id, ti.t.String(), ti.t))
	}
	return s
}

func newTypesRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	require.NoError(t, r.RegisterSchema(NamespaceApp, typesSchema()))
	_, err := r.RegisterInstance(NamespaceApp, typesSchemaID, &Instance{Data: newCells()})
	require.NoError(t, err)
	return r
}

func typesPath(id ItemID) Path { return ItemPath(NamespaceApp, typesSchemaID, 0, id) }

// nodeSchema is a sys schema with a nested group. Parameter ids repeat across
// groups, so it maps by item path.
const nodeSchemaID SchemaID = 0

type pathCells map[string][]byte

func (c pathCells) MapPath(items []ItemID, _ *Instance) []byte {
	return c[fmt.Sprint(items)]
}

func (c pathCells) Map(ItemID, *Instance) []byte { return nil }

func nodeSchema(c pathCells) *Schema {
	return &Schema{
		ID:   nodeSchemaID,
		Name: "node",
		Items: []Item{
			Group(0, "net",
				Param(0, "port", TypeUint16),
				Param(1, "host", TypeString),
				Group(2, "tls",
					Param(0, "enabled", TypeBool),
				),
			),
			Param(1, "debug", TypeBool),
		},
		Mapping: c,
	}
}

func newNodeCells() pathCells {
	return pathCells{
		"[0 0]":   make([]byte, 2),
		"[0 1]":   make([]byte, 16),
		"[0 2 0]": make([]byte, 1),
		"[1]":     make([]byte, 1),
	}
}

// commitRecorder counts commits and optionally fails.
type commitRecorder struct {
	calls []Path
	err   error
}

func (c *commitRecorder) Commit(_ context.Context, _ *Instance, p Path) error {
	c.calls = append(c.calls, p)
	return c.err
}
