package registry

import (
	"context"
	"fmt"
)

// Item is a node in a schema's item tree: either a Group holding child items
// or a Parameter holding a typed value. Item ids are unique among siblings.
type Item struct {
	ID          ItemID
	Name        string
	Description string

	// Type is the parameter's primitive type. It is TypeNone for groups.
	Type Type

	// Items are the children of a group. Parameters have none.
	Items []Item

	group bool
}

// Param declares a parameter item.
func Param(id ItemID, name string, t Type) Item {
	return Item{ID: id, Name: name, Type: t}
}

// Group declares a group item containing children.
func Group(id ItemID, name string, children ...Item) Item {
	return Item{ID: id, Name: name, Items: children, group: true}
}

// WithDescription returns a copy of the item with a description set.
func (it Item) WithDescription(desc string) Item {
	it.Description = desc
	return it
}

// IsGroup reports whether the item is a group.
func (it *Item) IsGroup() bool { return it.group }

// Mapping translates a parameter of an instance into the live bytes backing it.
//
// The returned slice is read and written in place by Get and Set; its length
// is the parameter's storage size (string capacity includes the terminator).
// Returning nil means the parameter has no storage and is a resolution error.
type Mapping interface {
	Map(id ItemID, inst *Instance) []byte
}

// MappingFunc adapts a function to the Mapping interface.
type MappingFunc func(id ItemID, inst *Instance) []byte

// Map calls f(id, inst).
func (f MappingFunc) Map(id ItemID, inst *Instance) []byte { return f(id, inst) }

// PathMapping is an optional extension of Mapping for schemas with nested
// groups. When a schema's Mapping implements it, the registry passes the full
// item chain instead of only the parameter id, so parameters in different
// groups may reuse ids.
type PathMapping interface {
	MapPath(items []ItemID, inst *Instance) []byte
}

// Committer applies pending changes of an instance, for example by
// reprogramming hardware from the instance's data.
type Committer interface {
	Commit(ctx context.Context, inst *Instance, p Path) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(ctx context.Context, inst *Instance, p Path) error

// Commit calls f(ctx, inst, p).
func (f CommitFunc) Commit(ctx context.Context, inst *Instance, p Path) error {
	return f(ctx, inst, p)
}

// Instance is one concrete occurrence of a schema's data.
type Instance struct {
	Name string

	// Data is the caller-owned object the schema's Mapping reads from.
	Data any

	// Committer is optional. Instances without one are skipped when a
	// commit fans out over a schema.
	Committer Committer

	// CommitContext is passed through untouched for the committer's use.
	CommitContext any

	id         InstanceID
	registered bool
}

// ID returns the instance's ordinal within its schema. It is assigned at
// registration in registration order.
func (i *Instance) ID() InstanceID { return i.id }

// Schema describes a typed tree of configuration items and owns the list of
// its instances.
type Schema struct {
	ID          SchemaID
	Name        string
	Description string
	Items       []Item
	Mapping     Mapping

	instances []*Instance
}

// Instances returns the schema's instances in id order.
func (s *Schema) Instances() []*Instance {
	out := make([]*Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Instance returns the instance with the given id.
func (s *Schema) Instance(id InstanceID) (*Instance, bool) {
	if int(id) >= len(s.instances) {
		return nil, false
	}
	return s.instances[id], true
}

// validate checks the item tree: sibling ids unique, parameters with a
// supported type and no children, groups with no type, depth within bounds.
func (s *Schema) validate() error {
	if s.Mapping == nil {
		return fmt.Errorf("%w: schema %d (%s) has no mapping", ErrRegistration, s.ID, s.Name)
	}
	return validateItems(s.Items, 1)
}

func validateItems(items []Item, depth int) error {
	if depth > MaxItemDepth {
		return fmt.Errorf("%w: item tree deeper than %d", ErrRegistration, MaxItemDepth)
	}
	seen := make(map[ItemID]struct{}, len(items))
	for i := range items {
		it := &items[i]
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: duplicate item id %d (%s)", ErrRegistration, it.ID, it.Name)
		}
		seen[it.ID] = struct{}{}

		if it.group {
			if it.Type != TypeNone {
				return fmt.Errorf("%w: group %d (%s) has type %s", ErrRegistration, it.ID, it.Name, it.Type)
			}
			if err := validateItems(it.Items, depth+1); err != nil {
				return err
			}
			continue
		}
		if len(it.Items) > 0 {
			return fmt.Errorf("%w: parameter %d (%s) has children", ErrRegistration, it.ID, it.Name)
		}
		if !it.Type.Supported() {
			return fmt.Errorf("%w: parameter %d (%s) has unsupported type %s", ErrRegistration, it.ID, it.Name, it.Type)
		}
	}
	return nil
}

// findItem returns the sibling with the given id.
func findItem(items []Item, id ItemID) *Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// findItemByName returns the sibling with the given name.
func findItemByName(items []Item, name string) *Item {
	for i := range items {
		if items[i].Name == name {
			return &items[i]
		}
	}
	return nil
}
