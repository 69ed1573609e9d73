package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// target is a resolved path.
type target struct {
	path   Path
	ns     *namespace
	schema *Schema
	inst   *Instance
	item   *Item
}

// resolve walks p down the catalogue: namespace, schema, instance, then one
// item per remaining segment. Groups are descended; a segment after a
// parameter does not resolve.
func (r *Registry) resolve(p Path) (target, error) {
	t := target{path: p}
	if p.level == LevelRoot {
		return t, nil
	}

	ns, err := r.namespace(p.ns)
	if err != nil {
		return t, err
	}
	t.ns = ns
	if p.level == LevelNamespace {
		return t, nil
	}

	t.schema = ns.schema(p.schema)
	if t.schema == nil {
		return t, fmt.Errorf("%w: schema %d not found in %s", ErrResolution, p.schema, ns.id)
	}
	if p.level == LevelSchema {
		return t, nil
	}

	inst, ok := t.schema.Instance(p.inst)
	if !ok {
		return t, fmt.Errorf("%w: instance %d out of range for schema %d (%d instances)",
			ErrResolution, p.inst, p.schema, len(t.schema.instances))
	}
	t.inst = inst
	if p.level == LevelInstance {
		return t, nil
	}

	items := t.schema.Items
	for i, id := range p.items {
		it := findItem(items, id)
		if it == nil {
			return t, fmt.Errorf("%w: item %d not found at %s", ErrResolution, id, p)
		}
		if !it.group && i < len(p.items)-1 {
			return t, fmt.Errorf("%w: item %d at %s is a parameter, not a group", ErrResolution, id, p)
		}
		t.item = it
		items = it.Items
	}
	return t, nil
}

// resolveParam resolves p to a parameter and maps its live storage.
func (r *Registry) resolveParam(p Path) (target, []byte, error) {
	t, err := r.resolve(p)
	if err != nil {
		return t, nil, err
	}
	if t.item == nil || t.item.group {
		return t, nil, fmt.Errorf("%w: %s does not address a parameter", ErrResolution, p)
	}
	storage := t.storage()
	if storage == nil {
		return t, nil, fmt.Errorf("%w: no storage mapped for %s", ErrResolution, p)
	}
	return t, storage, nil
}

// storage asks the schema's mapping for the live bytes of the resolved
// parameter.
func (t target) storage() []byte {
	if pm, ok := t.schema.Mapping.(PathMapping); ok {
		return pm.MapPath(t.path.items, t.inst)
	}
	return t.schema.Mapping.Map(t.item.ID, t.inst)
}

// ParamType returns the declared type of the parameter at p.
func (r *Registry) ParamType(p Path) (Type, error) {
	t, err := r.resolve(p)
	if err != nil {
		return TypeNone, err
	}
	if t.item == nil || t.item.group {
		return TypeNone, fmt.Errorf("%w: %s does not address a parameter", ErrResolution, p)
	}
	return t.item.Type, nil
}

// ResolveNamed converts a named path such as "app/rgb/0/red" to a numeric
// Path. Each segment may be a name or a decimal id: namespace names are "sys"
// and "app", instances match by name or ordinal. A path that is already
// numeric resolves to itself.
func (r *Registry) ResolveNamed(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return RootPath(), nil
	}
	parts := strings.Split(s, "/")
	if len(parts) > 3+MaxItemDepth {
		return Path{}, fmt.Errorf("%w: %q has too many segments", ErrResolution, s)
	}

	nsID, ok := ParseNamespace(parts[0])
	if !ok {
		n, err := parseSegment(parts[0])
		if err != nil {
			return Path{}, err
		}
		nsID = NamespaceID(n)
	}
	ns, err := r.namespace(nsID)
	if err != nil {
		return Path{}, err
	}
	p := NamespacePath(nsID)
	if len(parts) == 1 {
		return p, nil
	}

	schema := ns.schemaByName(parts[1])
	if schema == nil {
		n, err := parseSegment(parts[1])
		if err != nil {
			return Path{}, fmt.Errorf("%w: schema %q not found in %s", ErrResolution, parts[1], nsID)
		}
		if schema = ns.schema(SchemaID(n)); schema == nil {
			return Path{}, fmt.Errorf("%w: schema %d not found in %s", ErrResolution, n, nsID)
		}
	}
	p = p.child(uint32(schema.ID))
	if len(parts) == 2 {
		return p, nil
	}

	inst := instanceByName(schema, parts[2])
	if inst == nil {
		n, err := parseSegment(parts[2])
		if err != nil {
			return Path{}, fmt.Errorf("%w: instance %q not found in schema %s", ErrResolution, parts[2], schema.Name)
		}
		var ok bool
		if inst, ok = schema.Instance(InstanceID(n)); !ok {
			return Path{}, fmt.Errorf("%w: instance %d out of range for schema %s", ErrResolution, n, schema.Name)
		}
	}
	p = p.child(uint32(inst.id))

	items := schema.Items
	for _, part := range parts[3:] {
		it := findItemByName(items, part)
		if it == nil {
			n, err := parseSegment(part)
			if err != nil {
				return Path{}, fmt.Errorf("%w: item %q not found at %s", ErrResolution, part, p)
			}
			if it = findItem(items, ItemID(n)); it == nil {
				return Path{}, fmt.Errorf("%w: item %d not found at %s", ErrResolution, n, p)
			}
		}
		p = p.child(uint32(it.ID))
		items = it.Items
	}
	return p, nil
}

// NameOf renders p with names instead of ids where the catalogue has them.
func (r *Registry) NameOf(p Path) (string, error) {
	t, err := r.resolve(p)
	if err != nil {
		return "", err
	}
	if p.level == LevelRoot {
		return "/", nil
	}
	parts := []string{t.ns.id.String()}
	if t.schema != nil {
		parts = append(parts, nameOr(t.schema.Name, uint32(t.schema.ID)))
	}
	if t.inst != nil {
		parts = append(parts, nameOr(t.inst.Name, uint32(t.inst.id)))
	}
	items := t.schema.itemsOrNil()
	for _, id := range p.items {
		it := findItem(items, id)
		parts = append(parts, nameOr(it.Name, uint32(id)))
		items = it.Items
	}
	return strings.Join(parts, "/"), nil
}

func (s *Schema) itemsOrNil() []Item {
	if s == nil {
		return nil
	}
	return s.Items
}

func instanceByName(s *Schema, name string) *Instance {
	for _, inst := range s.instances {
		if inst.Name != "" && inst.Name == name {
			return inst
		}
	}
	return nil
}

func nameOr(name string, id uint32) string {
	if name != "" {
		return name
	}
	return strconv.FormatUint(uint64(id), 10)
}

func parseSegment(s string) (uint32, error) {
	if s == "" || len(s) > maxSegmentDigits {
		return 0, fmt.Errorf("%w: invalid segment %q", ErrResolution, s)
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid segment %q", ErrResolution, s)
	}
	return uint32(n), nil
}
