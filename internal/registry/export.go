package registry

import (
	"fmt"
	"time"
)

// NodeKind identifies what an exported Node describes.
type NodeKind uint8

// Node kinds.
const (
	NodeNamespace NodeKind = iota
	NodeSchema
	NodeInstance
	NodeGroup
	NodeParam
)

func (k NodeKind) String() string {
	switch k {
	case NodeNamespace:
		return "namespace"
	case NodeSchema:
		return "schema"
	case NodeInstance:
		return "instance"
	case NodeGroup:
		return "group"
	case NodeParam:
		return "param"
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is one visited element of an export walk. Fields that do not apply to
// Kind are nil or zero. Value is set for parameters only and aliases live
// instance memory for the duration of the visit.
type Node struct {
	Kind      NodeKind
	Path      Path
	Namespace NamespaceID
	Schema    *Schema
	Instance  *Instance
	Item      *Item
	Value     Value
}

// Visitor is called once per exported node.
type Visitor func(n Node) error

// Export walks the tree under p depth-first, calling visit for each node
// before its children.
//
// depth controls descent from the seed:
//   - 1 visits only the seed
//   - 0 visits the whole subtree
//   - d > 1 descends d-1 levels below the seed
//
// The root path seeds both namespaces, sys first. Visitor errors do not stop
// the walk; the first one is returned. A seed that does not resolve, or a
// parameter whose mapping returns no storage, aborts the walk.
func (r *Registry) Export(p Path, depth int, visit Visitor) (err error) {
	start := time.Now()
	defer func() { r.observe("export", start, err) }()

	if visit == nil {
		panic("registry: nil visitor")
	}
	if depth < 0 {
		return fmt.Errorf("%w: negative export depth %d", ErrResolution, depth)
	}

	t, err := r.resolve(p)
	if err != nil {
		return err
	}

	w := walker{visit: visit}
	var abort error
	switch p.level {
	case LevelRoot:
		for _, ns := range r.namespaces {
			if abort = w.namespace(ns, depth); abort != nil {
				break
			}
		}
	case LevelNamespace:
		abort = w.namespace(t.ns, depth)
	case LevelSchema:
		abort = w.schema(t.ns.id, t.schema, p, depth)
	case LevelInstance:
		abort = w.instance(t.ns.id, t.schema, t.inst, p, depth)
	default:
		abort = w.item(t.ns.id, t.schema, t.inst, t.item, p, depth)
	}
	w.errs.record(abort)
	return w.errs.err
}

// walker carries the visitor and the first visitor error through a walk.
// Its methods return only errors that abort the walk.
type walker struct {
	visit Visitor
	errs  firstError
}

// next applies the descent rule to depth d. It reports whether to descend
// and the depth to use for the children.
func next(d int) (int, bool) {
	switch {
	case d == 0:
		return 0, true
	case d == 1:
		return 0, false
	default:
		return d - 1, true
	}
}

func (w *walker) namespace(ns *namespace, d int) error {
	p := NamespacePath(ns.id)
	w.errs.record(w.visit(Node{Kind: NodeNamespace, Path: p, Namespace: ns.id}))
	cd, ok := next(d)
	if !ok {
		return nil
	}
	for _, s := range ns.schemas {
		if err := w.schema(ns.id, s, p.child(uint32(s.ID)), cd); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) schema(ns NamespaceID, s *Schema, p Path, d int) error {
	w.errs.record(w.visit(Node{Kind: NodeSchema, Path: p, Namespace: ns, Schema: s}))
	cd, ok := next(d)
	if !ok {
		return nil
	}
	for _, inst := range s.instances {
		if err := w.instance(ns, s, inst, p.child(uint32(inst.id)), cd); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) instance(ns NamespaceID, s *Schema, inst *Instance, p Path, d int) error {
	w.errs.record(w.visit(Node{Kind: NodeInstance, Path: p, Namespace: ns, Schema: s, Instance: inst}))
	cd, ok := next(d)
	if !ok {
		return nil
	}
	for i := range s.Items {
		it := &s.Items[i]
		if err := w.item(ns, s, inst, it, p.child(uint32(it.ID)), cd); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) item(ns NamespaceID, s *Schema, inst *Instance, it *Item, p Path, d int) error {
	n := Node{Namespace: ns, Path: p, Schema: s, Instance: inst, Item: it}
	if !it.group {
		storage := target{path: p, schema: s, inst: inst, item: it}.storage()
		if storage == nil {
			return fmt.Errorf("%w: no storage mapped for %s", ErrResolution, p)
		}
		v, err := decode(it.Type, storage)
		if err != nil {
			return err
		}
		n.Kind = NodeParam
		n.Value = v
		w.errs.record(w.visit(n))
		return nil
	}

	n.Kind = NodeGroup
	w.errs.record(w.visit(n))
	cd, ok := next(d)
	if !ok {
		return nil
	}
	for i := range it.Items {
		child := &it.Items[i]
		if err := w.item(ns, s, inst, child, p.child(uint32(child.ID)), cd); err != nil {
			return err
		}
	}
	return nil
}
