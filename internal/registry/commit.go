package registry

import (
	"context"
	"fmt"
	"time"
)

// Commit runs instance commit handlers for the subtree addressed by p.
//
//   - instance or item path: that instance's handler only; a missing handler
//     is ErrCommit
//   - schema path: every instance with a handler, in id order
//   - namespace path: every schema in the namespace
//   - root path: sys, then app
//
// Fan-out never stops at a failing handler. Every handler runs and the first
// error is returned.
func (r *Registry) Commit(ctx context.Context, p Path) (err error) {
	start := time.Now()
	defer func() { r.observe("commit", start, err) }()

	t, err := r.resolve(p)
	if err != nil {
		return err
	}

	switch p.level {
	case LevelRoot:
		var fe firstError
		for _, ns := range r.namespaces {
			fe.record(r.commitNamespace(ctx, ns))
		}
		return fe.err
	case LevelNamespace:
		return r.commitNamespace(ctx, t.ns)
	case LevelSchema:
		return r.commitSchema(ctx, t.ns.id, t.schema)
	}

	if t.inst.Committer == nil {
		return fmt.Errorf("%w: instance %d of schema %d has no commit handler", ErrCommit, t.inst.id, t.schema.ID)
	}
	return r.commitInstance(ctx, t.inst, p)
}

func (r *Registry) commitNamespace(ctx context.Context, ns *namespace) error {
	var fe firstError
	for _, s := range ns.schemas {
		fe.record(r.commitSchema(ctx, ns.id, s))
	}
	return fe.err
}

func (r *Registry) commitSchema(ctx context.Context, ns NamespaceID, s *Schema) error {
	var fe firstError
	for _, inst := range s.instances {
		if inst.Committer == nil {
			continue
		}
		fe.record(r.commitInstance(ctx, inst, InstancePath(ns, s.ID, inst.id)))
	}
	return fe.err
}

func (r *Registry) commitInstance(ctx context.Context, inst *Instance, p Path) error {
	if err := inst.Committer.Commit(ctx, inst, p); err != nil {
		r.logger.Warn("commit failed", "path", p.String(), "instance", inst.Name, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrCommit, p, err)
	}
	r.logger.Debug("committed", "path", p.String(), "instance", inst.Name)
	return nil
}
