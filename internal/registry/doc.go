// Package registry provides the hierarchical configuration registry for
// Gray Logic devices.
//
// Configuration parameters are declared as typed items grouped into schemas.
// Each schema lives in one of two fixed namespaces (sys and app) and has any
// number of instances, each backed by caller-owned memory. Every parameter of
// every instance is addressed by a numeric Path.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                              Registry                                 │
//	│                                                                       │
//	│   Path ──▶ resolve ──▶ Mapping(item, instance) ──▶ live []byte        │
//	│                │                                                      │
//	│                ├── Get / Set (access.go, convert.go)                  │
//	│                ├── Commit    (commit.go)                              │
//	│                └── Export    (export.go)                              │
//	│                        │                                              │
//	│                        ▼                                              │
//	│   Load / Save (storage.go) ◀──▶ StorageFacility (heap, fs, yaml, ...) │
//	└──────────────────────────────────────────────────────────────────────┘
//
// # Paths
//
// A path is "namespace/schema/instance/item/..." in decimal, for example
// "1/0/0/2" for item 2 of instance 0 of schema 0 in the app namespace. Up to
// MaxItemDepth item segments address parameters inside nested groups. The
// empty path addresses everything.
//
// # Values and conversion
//
// Set accepts a Value of any type and converts it through its canonical
// string form when it differs from the parameter's declared type. Get never
// converts: GetTyped with the wrong type fails with ErrTypeMismatch.
//
// # Usage
//
//	r := registry.New()
//	r.SetLogger(log)
//
//	led := &rgbLED{}
//	schema := &registry.Schema{
//	    ID:   0,
//	    Name: "rgb",
//	    Items: []registry.Item{
//	        registry.Param(0, "red", registry.TypeUint8),
//	        registry.Param(1, "green", registry.TypeUint8),
//	        registry.Param(2, "blue", registry.TypeUint8),
//	    },
//	    Mapping: registry.MappingFunc(func(id registry.ItemID, inst *registry.Instance) []byte {
//	        l := inst.Data.(*rgbLED)
//	        return l.channels[id : id+1]
//	    }),
//	}
//	if err := r.RegisterSchema(registry.NamespaceApp, schema); err != nil {
//	    return err
//	}
//	if _, err := r.RegisterInstance(registry.NamespaceApp, 0, &registry.Instance{Data: led}); err != nil {
//	    return err
//	}
//
//	red := registry.ItemPath(registry.NamespaceApp, 0, 0, 0)
//	err := r.SetUint8(red, 255)
//
// # Build tags
//
// Building with the registry_narrow tag disables the 64-bit integer and
// float types.
//
// # Thread Safety
//
// Registry performs no locking. Wrap it in Guarded when it is shared.
package registry
