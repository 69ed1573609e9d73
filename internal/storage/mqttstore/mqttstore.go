// Package mqttstore keeps registry values as retained MQTT messages, one
// topic per parameter, so any subscriber sees current configuration:
//
//	graylogic/registry/values/1/0/0/1  {"type":"u8","value":"255"}
//
// The broker is the store. Load subscribes to the subtree and collects the
// retained messages the broker replays, stopping once no message has
// arrived for the quiet period.
package mqttstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage"
)

// DefaultQuiet is the load quiet period used when none is configured.
const DefaultQuiet = 500 * time.Millisecond

// ErrInvalidMessage is returned for retained messages that do not decode.
var ErrInvalidMessage = errors.New("mqttstore: invalid message")

// Broker is the subset of *mqtt.Client the store needs.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Store persists values on an MQTT broker.
type Store struct {
	broker Broker
	topics mqtt.Topics
	qos    byte
	quiet  time.Duration
}

// New returns a store publishing under topics with the given QoS. A
// non-positive quiet period selects DefaultQuiet.
func New(broker Broker, topics mqtt.Topics, qos byte, quiet time.Duration) *Store {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Store{broker: broker, topics: topics, qos: qos, quiet: quiet}
}

// Save publishes v as a retained message on p's topic.
func (s *Store) Save(_ context.Context, p registry.Path, v registry.Value) error {
	rec, err := storage.Encode(v)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", p, err)
	}
	return s.broker.Publish(s.topics.Value(p.String()), payload, s.qos, true)
}

// collector gathers retained messages and signals each arrival.
type collector struct {
	mu       sync.Mutex
	payloads map[string][]byte
	arrived  chan struct{}
}

func (c *collector) handle(topic string, payload []byte) error {
	c.mu.Lock()
	if c.payloads == nil {
		// Delivered after Load finished.
		c.mu.Unlock()
		return nil
	}
	c.payloads[topic] = append([]byte(nil), payload...)
	c.mu.Unlock()

	select {
	case c.arrived <- struct{}{}:
	default:
	}
	return nil
}

// Load subscribes to the topics under p, waits until the broker has been
// quiet for the quiet period, and calls fn for every value in path order.
// Empty payloads mark cleared values and are skipped.
func (s *Store) Load(ctx context.Context, p registry.Path, fn registry.LoadFunc) error {
	filter := s.topics.ValuesUnder(p.String())
	c := &collector{payloads: make(map[string][]byte), arrived: make(chan struct{}, 1)}

	if err := s.broker.Subscribe(filter, s.qos, c.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", filter, err)
	}

	timer := time.NewTimer(s.quiet)
	defer timer.Stop()
	var waitErr error
wait:
	for {
		select {
		case <-c.arrived:
			timer.Reset(s.quiet)
		case <-timer.C:
			break wait
		case <-ctx.Done():
			waitErr = ctx.Err()
			if errors.Is(waitErr, context.DeadlineExceeded) {
				waitErr = fmt.Errorf("%w: waiting for retained messages on %s: %w", mqtt.ErrTimeout, filter, waitErr)
			}
			break wait
		}
	}

	unsubErr := s.broker.Unsubscribe(filter)
	if waitErr != nil {
		return waitErr
	}

	c.mu.Lock()
	payloads := c.payloads
	c.payloads = nil
	c.mu.Unlock()

	var firstErr error
	record := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	values := make(map[string]registry.Value, len(payloads))
	paths := make([]registry.Path, 0, len(payloads))
	for topic, payload := range payloads {
		if len(payload) == 0 {
			continue
		}
		ip, v, err := s.decode(topic, payload)
		if err != nil {
			record(err)
			continue
		}
		if !p.Contains(ip) {
			continue
		}
		values[ip.String()] = v
		paths = append(paths, ip)
	}
	storage.SortPaths(paths)

	for _, ip := range paths {
		_ = fn(ip, values[ip.String()])
	}

	if unsubErr != nil {
		record(fmt.Errorf("unsubscribing from %s: %w", filter, unsubErr))
	}
	return firstErr
}

func (s *Store) decode(topic string, payload []byte) (registry.Path, registry.Value, error) {
	key, ok := s.topics.PathFromTopic(topic)
	if !ok {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: unexpected topic %s", ErrInvalidMessage, topic)
	}
	p, err := registry.ParsePath(key)
	if err != nil {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: %s: %w", ErrInvalidMessage, topic, err)
	}
	var rec storage.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: %s: %w", ErrInvalidMessage, topic, err)
	}
	v, err := storage.Decode(rec)
	if err != nil {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: %s: %w", ErrInvalidMessage, topic, err)
	}
	return p, v, nil
}

// Clear removes the retained value for p by publishing an empty retained
// message.
func (s *Store) Clear(_ context.Context, p registry.Path) error {
	return s.broker.Publish(s.topics.Value(p.String()), nil, s.qos, true)
}
