package registry

import (
	"context"
	"fmt"
	"time"
)

// LoadFunc receives one stored (path, value) pair from a storage facility.
// The value's buffer only needs to stay valid for the duration of the call.
type LoadFunc func(p Path, v Value) error

// StorageFacility is a pluggable persistence backend.
type StorageFacility interface {
	// Load calls fn once for every stored value under p, or for all stored
	// values when p is the root. It should keep going when fn returns an
	// error.
	Load(ctx context.Context, p Path, fn LoadFunc) error

	// Save persists one value at a fully qualified parameter path, replacing
	// any previous value at that path.
	Save(ctx context.Context, p Path, v Value) error
}

// SaveBracketer is implemented by facilities that need to prepare for and
// finish a batch of saves, such as opening and committing a transaction.
type SaveBracketer interface {
	SaveStart(ctx context.Context) error
	SaveEnd(ctx context.Context) error
}

// StoredValueReader is implemented by facilities that can report the value
// they currently hold for a path. It enables duplicate suppression on save.
type StoredValueReader interface {
	Lookup(ctx context.Context, p Path) (Value, bool, error)
}

// Load restores values under p from every registered load source, in
// registration order. Each stored pair is applied with Set, so when two
// sources hold the same path the later source wins.
//
// Failures of individual items or sources do not stop the load. The first
// error is returned. Without any load source Load fails with ErrStorage.
func (r *Registry) Load(ctx context.Context, p Path) (err error) {
	start := time.Now()
	defer func() { r.observe("load", start, err) }()

	if len(r.loadSources) == 0 {
		return fmt.Errorf("%w: no load source registered", ErrStorage)
	}

	var fe firstError
	loaded := 0
	for i, src := range r.loadSources {
		serr := src.Load(ctx, p, func(ip Path, v Value) error {
			if err := r.Set(ip, v); err != nil {
				r.logger.Warn("load: value rejected", "path", ip.String(), "source", i, "error", err)
				fe.record(err)
				return nil
			}
			loaded++
			return nil
		})
		if serr != nil {
			r.logger.Error("load: source failed", "source", i, "path", p.String(), "error", serr)
			fe.record(fmt.Errorf("%w: load source %d: %w", ErrStorage, i, serr))
		}
	}

	r.logger.Info("values loaded", "path", p.String(), "sources", len(r.loadSources), "count", loaded)
	return fe.err
}

// Save writes every parameter under p to the save destination.
//
// The destination's SaveStart hook runs first and aborts the save if it
// fails. Every parameter is then passed to Save, and SaveEnd always runs
// afterwards. The first error is returned. Without a save destination Save
// fails with ErrStorage before touching the destination or walking the tree.
func (r *Registry) Save(ctx context.Context, p Path) (err error) {
	start := time.Now()
	defer func() { r.observe("save", start, err) }()

	dest := r.saveDest
	if dest == nil {
		return fmt.Errorf("%w: no save destination registered", ErrStorage)
	}

	bracket, _ := dest.(SaveBracketer)
	if bracket != nil {
		if err := bracket.SaveStart(ctx); err != nil {
			return fmt.Errorf("%w: save start: %w", ErrStorage, err)
		}
	}

	var reader StoredValueReader
	if r.saveDedup {
		reader, _ = dest.(StoredValueReader)
	}

	var fe firstError
	saved, skipped := 0, 0
	fe.record(r.Export(p, 0, func(n Node) error {
		if n.Kind != NodeParam {
			return nil
		}
		if reader != nil && unchanged(ctx, reader, n) {
			skipped++
			return nil
		}
		if err := dest.Save(ctx, n.Path, n.Value); err != nil {
			r.logger.Warn("save: value failed", "path", n.Path.String(), "error", err)
			return fmt.Errorf("%w: save %s: %w", ErrStorage, n.Path, err)
		}
		saved++
		return nil
	}))

	if bracket != nil {
		if err := bracket.SaveEnd(ctx); err != nil {
			fe.record(fmt.Errorf("%w: save end: %w", ErrStorage, err))
		}
	}

	r.logger.Info("values saved", "path", p.String(), "count", saved, "unchanged", skipped)
	return fe.err
}

// unchanged reports whether the destination already holds n's value.
// Lookup failures count as changed.
func unchanged(ctx context.Context, reader StoredValueReader, n Node) bool {
	stored, ok, err := reader.Lookup(ctx, n.Path)
	if err != nil || !ok {
		return false
	}
	if stored.Type == TypeNone {
		return Value{Type: n.Value.Type, Buf: stored.Buf}.Equal(n.Value)
	}
	return stored.Equal(n.Value)
}
