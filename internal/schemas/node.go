package schemas

import (
	"encoding/binary"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// NodeSchemaID is the id of the node schema in the sys namespace.
const NodeSchemaID registry.SchemaID = 0

// Capacities of the node's string parameters, terminator included.
const (
	NodeHostCap  = 32
	NodeLevelCap = 8
)

// Node holds the node's own settings.
//
//	net/port        u16
//	net/host        string
//	net/tls/enabled bool
//	log/level       string
//	log/debug       bool
//
// Item ids repeat across groups, so the schema maps by item chain.
type Node struct {
	port       [2]byte
	host       [NodeHostCap]byte
	tlsEnabled [1]byte
	level      [NodeLevelCap]byte
	debug      [1]byte
}

// NewNode returns node settings with port 8080, host "localhost" and log
// level "info".
func NewNode() *Node {
	n := &Node{}
	binary.LittleEndian.PutUint16(n.port[:], 8080)
	copy(n.host[:], "localhost")
	copy(n.level[:], "info")
	return n
}

// Port returns the configured listen port.
func (n *Node) Port() uint16 { return binary.LittleEndian.Uint16(n.port[:]) }

// nodeMapping resolves item chains against a *Node.
type nodeMapping struct{}

func (nodeMapping) Map(registry.ItemID, *registry.Instance) []byte { return nil }

func (nodeMapping) MapPath(items []registry.ItemID, inst *registry.Instance) []byte {
	n, ok := inst.Data.(*Node)
	if !ok {
		return nil
	}
	switch {
	case chainIs(items, 0, 0):
		return n.port[:]
	case chainIs(items, 0, 1):
		return n.host[:]
	case chainIs(items, 0, 2, 0):
		return n.tlsEnabled[:]
	case chainIs(items, 1, 0):
		return n.level[:]
	case chainIs(items, 1, 1):
		return n.debug[:]
	}
	return nil
}

func chainIs(items []registry.ItemID, want ...registry.ItemID) bool {
	if len(items) != len(want) {
		return false
	}
	for i := range want {
		if items[i] != want[i] {
			return false
		}
	}
	return true
}

// NodeSchema returns a fresh node schema.
func NodeSchema() *registry.Schema {
	return &registry.Schema{
		ID:          NodeSchemaID,
		Name:        "node",
		Description: "Node settings",
		Items: []registry.Item{
			registry.Group(0, "net",
				registry.Param(0, "port", registry.TypeUint16),
				registry.Param(1, "host", registry.TypeString),
				registry.Group(2, "tls",
					registry.Param(0, "enabled", registry.TypeBool),
				),
			),
			registry.Group(1, "log",
				registry.Param(0, "level", registry.TypeString).WithDescription("debug, info, warn or error"),
				registry.Param(1, "debug", registry.TypeBool),
			),
		},
		Mapping: nodeMapping{},
	}
}
