package registry

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Identifier types for each path component.
type (
	NamespaceID uint32
	SchemaID    uint32
	InstanceID  uint32
	ItemID      uint32
)

// Path limits.
const (
	// MaxItemDepth is the maximum number of item segments after the instance.
	MaxItemDepth = 8

	// maxSegmentDigits bounds each textual segment.
	maxSegmentDigits = 10
)

// Level reports how specific a Path is.
type Level uint8

// Path levels, from least to most specific.
const (
	LevelRoot Level = iota
	LevelNamespace
	LevelSchema
	LevelInstance
	LevelItem
)

func (l Level) String() string {
	switch l {
	case LevelRoot:
		return "root"
	case LevelNamespace:
		return "namespace"
	case LevelSchema:
		return "schema"
	case LevelInstance:
		return "instance"
	case LevelItem:
		return "item"
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// Path addresses a namespace, schema, instance, or an item inside an instance.
// Components beyond the path's level are zero. Build paths with the
// constructors or ParsePath; the zero Path is the root.
type Path struct {
	ns     NamespaceID
	schema SchemaID
	inst   InstanceID
	items  []ItemID

	level Level
}

// RootPath returns the empty path, which addresses every namespace.
func RootPath() Path { return Path{} }

// NamespacePath addresses a whole namespace.
func NamespacePath(ns NamespaceID) Path {
	return Path{ns: ns, level: LevelNamespace}
}

// SchemaPath addresses a schema and all its instances.
func SchemaPath(ns NamespaceID, schema SchemaID) Path {
	return Path{ns: ns, schema: schema, level: LevelSchema}
}

// InstancePath addresses one instance of a schema.
func InstancePath(ns NamespaceID, schema SchemaID, inst InstanceID) Path {
	return Path{ns: ns, schema: schema, inst: inst, level: LevelInstance}
}

// ItemPath addresses a parameter or group inside an instance.
// It panics if items is empty or longer than MaxItemDepth.
func ItemPath(ns NamespaceID, schema SchemaID, inst InstanceID, items ...ItemID) Path {
	if len(items) == 0 || len(items) > MaxItemDepth {
		panic(fmt.Sprintf("registry: item path needs 1..%d items, got %d", MaxItemDepth, len(items)))
	}
	return Path{ns: ns, schema: schema, inst: inst, items: slices.Clone(items), level: LevelItem}
}

// Level returns the most specific component present in p.
func (p Path) Level() Level { return p.level }

// IsRoot reports whether p is the empty path.
func (p Path) IsRoot() bool { return p.level == LevelRoot }

// Namespace returns the namespace component, zero for the root path.
func (p Path) Namespace() NamespaceID { return p.ns }

// Schema returns the schema component, zero above schema level.
func (p Path) Schema() SchemaID { return p.schema }

// Instance returns the instance component, zero above instance level.
func (p Path) Instance() InstanceID { return p.inst }

// Items returns a copy of the item components.
func (p Path) Items() []ItemID { return slices.Clone(p.items) }

// Segments returns the numeric components of p in order.
func (p Path) Segments() []uint32 {
	segs := make([]uint32, 0, 3+len(p.items))
	if p.level >= LevelNamespace {
		segs = append(segs, uint32(p.ns))
	}
	if p.level >= LevelSchema {
		segs = append(segs, uint32(p.schema))
	}
	if p.level >= LevelInstance {
		segs = append(segs, uint32(p.inst))
	}
	for _, id := range p.items {
		segs = append(segs, uint32(id))
	}
	return segs
}

// String returns the textual form "ns/schema/instance/item/...".
// The root path renders as "/".
func (p Path) String() string {
	if p.level == LevelRoot {
		return "/"
	}
	var sb strings.Builder
	for i, seg := range p.Segments() {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.FormatUint(uint64(seg), 10))
	}
	return sb.String()
}

// Equal reports whether p and q address the same node.
func (p Path) Equal(q Path) bool {
	return p.level == q.level && slices.Equal(p.Segments(), q.Segments())
}

// Contains reports whether q lies inside the subtree addressed by p.
// Every path contains itself, and the root contains everything.
func (p Path) Contains(q Path) bool {
	ps, qs := p.Segments(), q.Segments()
	if len(qs) < len(ps) {
		return false
	}
	return slices.Equal(ps, qs[:len(ps)])
}

// child returns p extended by one segment at the next level.
func (p Path) child(seg uint32) Path {
	c := p
	switch p.level {
	case LevelRoot:
		c.ns = NamespaceID(seg)
		c.level = LevelNamespace
	case LevelNamespace:
		c.schema = SchemaID(seg)
		c.level = LevelSchema
	case LevelSchema:
		c.inst = InstanceID(seg)
		c.level = LevelInstance
	default:
		c.items = append(slices.Clone(p.items), ItemID(seg))
		c.level = LevelItem
	}
	return c
}

// PathFromSegments builds a Path from numeric components in order.
func PathFromSegments(segs []uint32) (Path, error) {
	if len(segs) > 3+MaxItemDepth {
		return Path{}, fmt.Errorf("%w: %d item segments exceed limit of %d", ErrResolution, len(segs)-3, MaxItemDepth)
	}
	p := RootPath()
	for _, seg := range segs {
		p = p.child(seg)
	}
	return p, nil
}

// ParsePath parses the textual form produced by Path.String.
//
// Segments are unsigned decimal numbers of at most ten digits that fit in 32
// bits. Leading and trailing slashes are ignored, so "" and "/" both parse as
// the root path.
func ParsePath(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return RootPath(), nil
	}

	parts := strings.Split(s, "/")
	segs := make([]uint32, 0, len(parts))
	for _, part := range parts {
		if part == "" || len(part) > maxSegmentDigits {
			return Path{}, fmt.Errorf("%w: invalid segment %q in %q", ErrResolution, part, s)
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return Path{}, fmt.Errorf("%w: invalid segment %q in %q", ErrResolution, part, s)
			}
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Path{}, fmt.Errorf("%w: segment %q out of range", ErrResolution, part)
		}
		segs = append(segs, uint32(n))
	}
	return PathFromSegments(segs)
}

// MustParsePath is like ParsePath but panics on error. Intended for constants
// and tests.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}
