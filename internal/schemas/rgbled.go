package schemas

import (
	"context"
	"sync"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// RGBLEDSchemaID is the id of the rgbled schema in the app namespace.
const RGBLEDSchemaID registry.SchemaID = 0

// Item ids of the rgbled schema.
const (
	ItemRed   registry.ItemID = 0
	ItemGreen registry.ItemID = 1
	ItemBlue  registry.ItemID = 2
)

// LED is the backing memory of one rgbled instance.
//
// Channels holds the configured colour and is read and written by the
// registry. Output is what the light currently shows; it only changes on
// commit.
type LED struct {
	Channels [3]byte

	mu      sync.Mutex
	output  [3]byte
	commits int
}

// NewLED creates an LED configured with the given colour.
func NewLED(r, g, b uint8) *LED {
	return &LED{Channels: [3]byte{r, g, b}}
}

// Output returns the colour latched by the last commit.
func (l *LED) Output() [3]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.output
}

// Commits returns how many times the LED was committed.
func (l *LED) Commits() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commits
}

func (l *LED) apply(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = l.Channels
	l.commits++
	return nil
}

// RGBLEDSchema returns a fresh rgbled schema.
func RGBLEDSchema() *registry.Schema {
	return &registry.Schema{
		ID:          RGBLEDSchemaID,
		Name:        "rgbled",
		Description: "Three-channel LED colour",
		Items: []registry.Item{
			registry.Param(ItemRed, "red", registry.TypeUint8),
			registry.Param(ItemGreen, "green", registry.TypeUint8),
			registry.Param(ItemBlue, "blue", registry.TypeUint8),
		},
		Mapping: registry.MappingFunc(mapLED),
	}
}

func mapLED(id registry.ItemID, inst *registry.Instance) []byte {
	led, ok := inst.Data.(*LED)
	if !ok || int(id) >= len(led.Channels) {
		return nil
	}
	return led.Channels[id : id+1]
}

// LEDInstance wraps led in an instance whose committer latches the colour.
func LEDInstance(name string, led *LED) *registry.Instance {
	return &registry.Instance{
		Name: name,
		Data: led,
		Committer: registry.CommitFunc(func(ctx context.Context, inst *registry.Instance, _ registry.Path) error {
			return inst.Data.(*LED).apply(ctx)
		}),
	}
}
