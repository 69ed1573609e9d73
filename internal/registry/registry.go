package registry

import (
	"fmt"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives the outcome of every registry entry point.
// op is one of "get", "set", "commit", "export", "load", "save".
type Observer interface {
	ObserveOperation(op string, elapsed time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, time.Duration, error) {}

// ChangeFunc is called after a successful Set with the written path and a copy
// of the parameter's new value.
type ChangeFunc func(p Path, v Value)

// Registry is the catalogue of namespaces, schemas and instances, and the
// entry point for get, set, commit, export, load and save.
//
// A Registry has a single logical owner and performs no locking. Use Guarded
// to share one between goroutines.
type Registry struct {
	namespaces [len(namespaceOrder)]*namespace

	loadSources []StorageFacility
	saveDest    StorageFacility
	saveDedup   bool

	listeners []ChangeFunc
	logger    Logger
	observer  Observer
}

// New creates an empty registry with the sys and app namespaces.
func New() *Registry {
	r := &Registry{
		logger:   noopLogger{},
		observer: noopObserver{},
	}
	for i, id := range namespaceOrder {
		r.namespaces[i] = &namespace{id: id}
	}
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetObserver installs an observer notified of every entry point's outcome.
func (r *Registry) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	r.observer = o
}

// SetSaveDedup toggles duplicate suppression during Save. When enabled and
// the save destination implements StoredValueReader, parameters whose stored
// value already equals the live value are not written.
func (r *Registry) SetSaveDedup(enabled bool) {
	r.saveDedup = enabled
}

// OnChange registers a listener called after every successful Set, including
// the sets performed by Load.
func (r *Registry) OnChange(fn ChangeFunc) {
	if fn == nil {
		panic("registry: nil change listener")
	}
	r.listeners = append(r.listeners, fn)
}

// RegisterSchema adds a schema to a namespace.
//
// Parameters:
//   - ns: NamespaceSys or NamespaceApp
//   - s: the schema; its item tree must not be modified afterwards
//
// Returns:
//   - error: ErrResolution for an unknown namespace, ErrRegistration for a
//     duplicate schema id or a malformed item tree
//
// It panics if s is nil.
func (r *Registry) RegisterSchema(ns NamespaceID, s *Schema) error {
	if s == nil {
		panic("registry: nil schema")
	}
	n, err := r.namespace(ns)
	if err != nil {
		return err
	}
	if n.schema(s.ID) != nil {
		return fmt.Errorf("%w: schema id %d already registered in %s", ErrRegistration, s.ID, ns)
	}
	if err := s.validate(); err != nil {
		return err
	}
	n.schemas = append(n.schemas, s)
	r.logger.Debug("schema registered", "namespace", ns.String(), "schema", s.ID, "name", s.Name)
	return nil
}

// RegisterInstance appends an instance to a schema and returns its id, which
// is its ordinal in registration order. Instances cannot be removed.
//
// It panics if inst is nil.
func (r *Registry) RegisterInstance(ns NamespaceID, schema SchemaID, inst *Instance) (InstanceID, error) {
	if inst == nil {
		panic("registry: nil instance")
	}
	if inst.registered {
		return 0, fmt.Errorf("%w: instance %q already registered", ErrRegistration, inst.Name)
	}
	s, err := r.Schema(ns, schema)
	if err != nil {
		return 0, err
	}
	inst.id = InstanceID(len(s.instances))
	inst.registered = true
	s.instances = append(s.instances, inst)
	r.logger.Debug("instance registered", "namespace", ns.String(), "schema", schema, "instance", inst.id, "name", inst.Name)
	return inst.id, nil
}

// RegisterLoadSource adds a storage facility consulted by Load.
// Sources are loaded in registration order. It panics if f is nil.
func (r *Registry) RegisterLoadSource(f StorageFacility) {
	if f == nil {
		panic("registry: nil load source")
	}
	r.loadSources = append(r.loadSources, f)
}

// RegisterSaveDestination sets the storage facility written by Save,
// replacing any previous destination. It panics if f is nil.
func (r *Registry) RegisterSaveDestination(f StorageFacility) {
	if f == nil {
		panic("registry: nil save destination")
	}
	r.saveDest = f
}

// Schema returns a registered schema.
func (r *Registry) Schema(ns NamespaceID, id SchemaID) (*Schema, error) {
	n, err := r.namespace(ns)
	if err != nil {
		return nil, err
	}
	s := n.schema(id)
	if s == nil {
		return nil, fmt.Errorf("%w: schema %d not found in %s", ErrResolution, id, ns)
	}
	return s, nil
}

// Schemas returns the schemas of a namespace in registration order.
func (r *Registry) Schemas(ns NamespaceID) ([]*Schema, error) {
	n, err := r.namespace(ns)
	if err != nil {
		return nil, err
	}
	out := make([]*Schema, len(n.schemas))
	copy(out, n.schemas)
	return out, nil
}

func (r *Registry) namespace(id NamespaceID) (*namespace, error) {
	if int(id) >= len(r.namespaces) {
		return nil, fmt.Errorf("%w: unknown namespace %d", ErrResolution, id)
	}
	return r.namespaces[id], nil
}

// observe reports an operation's outcome to the observer.
func (r *Registry) observe(op string, start time.Time, err error) {
	r.observer.ObserveOperation(op, time.Since(start), err)
}
