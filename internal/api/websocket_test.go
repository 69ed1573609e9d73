package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/schemas"
)

func TestNotifierDuringGuardedSet(t *testing.T) {
	r := registry.New()
	_, err := schemas.Register(r)
	require.NoError(t, err)

	hub := NewHub(config.WebSocketConfig{}, logging.Nop())
	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, 4),
		subscriptions: map[string]registry.Path{"": registry.RootPath()},
	}
	hub.clients[client] = struct{}{}
	r.OnChange(hub.Notifier(r))

	g := registry.NewGuarded(r)
	p, err := g.ResolveNamed("app/rgbled/status/green")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- g.Set(p, registry.Uint8Value(9)) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("set through Guarded did not return")
	}

	var msg struct {
		EventType string      `json:"event_type"`
		Payload   ChangeEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-client.send, &msg))
	assert.Equal(t, EventValueChanged, msg.EventType)
	assert.Equal(t, ChangeEvent{Path: "1/0/0/1", Name: "app/rgbled/status/green", Type: "u8", Value: "9"}, msg.Payload)
}
