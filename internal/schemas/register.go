package schemas

import (
	"fmt"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// Set is the live data behind the built-in schemas.
type Set struct {
	Node *Node
	LEDs map[string]*LED
}

// ledDefaults are the lights registered by Register, in instance order.
var ledDefaults = []struct {
	name    string
	r, g, b uint8
}{
	{"status", 0, 255, 70},
	{"ambient", 255, 180, 100},
}

// Register adds the node and rgbled schemas to r with their default
// instances: node "local", and rgbled "status" and "ambient".
func Register(r *registry.Registry) (*Set, error) {
	set := &Set{Node: NewNode(), LEDs: make(map[string]*LED, len(ledDefaults))}

	if err := r.RegisterSchema(registry.NamespaceSys, NodeSchema()); err != nil {
		return nil, fmt.Errorf("registering node schema: %w", err)
	}
	if _, err := r.RegisterInstance(registry.NamespaceSys, NodeSchemaID, &registry.Instance{Name: "local", Data: set.Node}); err != nil {
		return nil, fmt.Errorf("registering node instance: %w", err)
	}

	if err := r.RegisterSchema(registry.NamespaceApp, RGBLEDSchema()); err != nil {
		return nil, fmt.Errorf("registering rgbled schema: %w", err)
	}
	for _, d := range ledDefaults {
		led := NewLED(d.r, d.g, d.b)
		if _, err := r.RegisterInstance(registry.NamespaceApp, RGBLEDSchemaID, LEDInstance(d.name, led)); err != nil {
			return nil, fmt.Errorf("registering rgbled %s: %w", d.name, err)
		}
		set.LEDs[d.name] = led
	}
	return set, nil
}
