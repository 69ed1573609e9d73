package registry

import "fmt"

// The two fixed namespaces.
const (
	NamespaceSys NamespaceID = 0
	NamespaceApp NamespaceID = 1
)

// namespaceOrder is the order in which root-level operations visit namespaces.
var namespaceOrder = [...]NamespaceID{NamespaceSys, NamespaceApp}

// String returns "sys" or "app".
func (id NamespaceID) String() string {
	switch id {
	case NamespaceSys:
		return "sys"
	case NamespaceApp:
		return "app"
	}
	return fmt.Sprintf("ns%d", uint32(id))
}

// ParseNamespace maps a namespace name to its id.
func ParseNamespace(name string) (NamespaceID, bool) {
	switch name {
	case "sys":
		return NamespaceSys, true
	case "app":
		return NamespaceApp, true
	}
	return 0, false
}

// namespace holds an ordered list of schemas.
type namespace struct {
	id      NamespaceID
	schemas []*Schema
}

func (n *namespace) schema(id SchemaID) *Schema {
	for _, s := range n.schemas {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (n *namespace) schemaByName(name string) *Schema {
	for _, s := range n.schemas {
		if s.Name == name {
			return s
		}
	}
	return nil
}
