package registry

import (
	"context"
	"sync"
)

// Guarded serializes access to a Registry shared between goroutines.
//
// Registration is expected to finish before the registry is wrapped.
// Values returned by Get are copies, since live memory may change as soon
// as the lock is released.
type Guarded struct {
	mu sync.Mutex
	r  *Registry
}

// NewGuarded wraps r. The caller must not use r directly afterwards.
func NewGuarded(r *Registry) *Guarded {
	return &Guarded{r: r}
}

// Get returns a copy of the parameter's value.
func (g *Guarded) Get(p Path) (Value, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.r.Get(p)
	if err != nil {
		return Value{}, err
	}
	return v.Clone(), nil
}

// GetTyped returns a copy of the parameter's value if it has type want.
func (g *Guarded) GetTyped(p Path, want Type) (Value, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.r.GetTyped(p, want)
	if err != nil {
		return Value{}, err
	}
	return v.Clone(), nil
}

func (g *Guarded) Set(p Path, v Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Set(p, v)
}

func (g *Guarded) ParamType(p Path) (Type, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.ParamType(p)
}

func (g *Guarded) Commit(ctx context.Context, p Path) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Commit(ctx, p)
}

// Export runs an export walk with the lock held. visit must not call back
// into g.
func (g *Guarded) Export(p Path, depth int, visit Visitor) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Export(p, depth, visit)
}

func (g *Guarded) Load(ctx context.Context, p Path) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Load(ctx, p)
}

func (g *Guarded) Save(ctx context.Context, p Path) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Save(ctx, p)
}

func (g *Guarded) ResolveNamed(s string) (Path, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.ResolveNamed(s)
}

func (g *Guarded) NameOf(p Path) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.NameOf(p)
}
