// Package influxstore records saved registry values in InfluxDB. Every save
// adds one point per parameter, so the bucket holds the full history of the
// configuration; Load restores the latest value of each path.
package influxstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage"
)

// Measurement is the measurement every value point is written to.
const Measurement = "registry_values"

// Point tag and field keys.
const (
	tagPath      = "path"
	tagType      = "type"
	tagNamespace = "namespace"
	tagSchema    = "schema"
	fieldValue   = "value"
)

// ErrInvalidRecord is returned for query records that do not decode.
var ErrInvalidRecord = errors.New("influxstore: invalid record")

// Client is the subset of *influxdb.Client the store needs.
type Client interface {
	WritePoints(ctx context.Context, points ...*write.Point) error
	Flush(ctx context.Context) error
	Query(ctx context.Context, flux string) (*api.QueryTableResult, error)
	Bucket() string
}

// Store writes value history to InfluxDB.
type Store struct {
	client Client
	now    func() time.Time

	mu    sync.Mutex
	stamp time.Time // shared by all points of the save in progress
}

// New returns a store writing through client.
func New(client Client) *Store {
	return &Store{client: client, now: time.Now}
}

// SaveStart fixes the timestamp for the points of this save.
func (s *Store) SaveStart(context.Context) error {
	s.mu.Lock()
	s.stamp = s.now()
	s.mu.Unlock()
	return nil
}

// Save queues a point for v. Points are sent when the batch fills or at
// SaveEnd.
func (s *Store) Save(ctx context.Context, p registry.Path, v registry.Value) error {
	point, err := s.point(p, v)
	if err != nil {
		return err
	}
	return s.client.WritePoints(ctx, point)
}

func (s *Store) point(p registry.Path, v registry.Value) (*write.Point, error) {
	rec, err := storage.Encode(v)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ts := s.stamp
	s.mu.Unlock()
	if ts.IsZero() {
		ts = s.now()
	}

	tags := map[string]string{
		tagPath: p.String(),
		tagType: rec.Type,
	}
	if p.Level() >= registry.LevelNamespace {
		tags[tagNamespace] = p.Namespace().String()
	}
	if p.Level() >= registry.LevelSchema {
		tags[tagSchema] = strconv.FormatUint(uint64(p.Schema()), 10)
	}
	return write.NewPoint(Measurement, tags, map[string]any{fieldValue: rec.Value}, ts), nil
}

// SaveEnd flushes queued points and ends the save.
func (s *Store) SaveEnd(ctx context.Context) error {
	s.mu.Lock()
	s.stamp = time.Time{}
	s.mu.Unlock()
	return s.client.Flush(ctx)
}

// Load calls fn with the most recent value of every path under p, in path
// order. Records that do not decode are skipped and the first such error is
// returned.
func (s *Store) Load(ctx context.Context, p registry.Path, fn registry.LoadFunc) error {
	result, err := s.client.Query(ctx, latestQuery(s.client.Bucket(), p))
	if err != nil {
		return err
	}
	defer result.Close()

	var firstErr error
	values := make(map[string]registry.Value)
	var paths []registry.Path
	for result.Next() {
		ip, v, err := decodeRecord(result.Record().Values(), result.Record().Value())
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, seen := values[ip.String()]; !seen {
			paths = append(paths, ip)
		}
		values[ip.String()] = v
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("reading query result: %w", err)
	}

	storage.SortPaths(paths)
	for _, ip := range paths {
		_ = fn(ip, values[ip.String()])
	}
	return firstErr
}

func decodeRecord(cols map[string]any, value any) (registry.Path, registry.Value, error) {
	key, _ := cols[tagPath].(string)
	typeName, _ := cols[tagType].(string)
	text, ok := value.(string)
	if !ok {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: %s: value is %T", ErrInvalidRecord, key, value)
	}

	p, err := registry.ParsePath(key)
	if err != nil {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	v, err := storage.Decode(storage.Record{Type: typeName, Value: text})
	if err != nil {
		return registry.Path{}, registry.Value{}, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, key, err)
	}
	return p, v, nil
}

// latestQuery builds the Flux query returning the last value per path under p.
func latestQuery(bucket string, p registry.Path) string {
	q := `import "strings"

from(bucket: ` + strconv.Quote(bucket) + `)
  |> range(start: 0)
  |> filter(fn: (r) => r._measurement == "` + Measurement + `" and r._field == "` + fieldValue + `")
`
	if !p.IsRoot() {
		q += `  |> filter(fn: (r) => r.path == ` + strconv.Quote(p.String()) +
			` or strings.hasPrefix(v: r.path, prefix: ` + strconv.Quote(p.String()+"/") + `))
`
	}
	q += `  |> group(columns: ["path"])
  |> last()
`
	return q
}
