// Package facilities builds the storage facilities named in configuration
// and registers them with a registry.
package facilities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage/fsstore"
	"github.com/nerrad567/gray-logic-registry/internal/storage/heapstore"
	"github.com/nerrad567/gray-logic-registry/internal/storage/influxstore"
	"github.com/nerrad567/gray-logic-registry/internal/storage/mqttstore"
	"github.com/nerrad567/gray-logic-registry/internal/storage/sqlstore"
	"github.com/nerrad567/gray-logic-registry/internal/storage/yamlstore"
)

// ErrUnknownFacility is returned for facility names with no implementation.
var ErrUnknownFacility = errors.New("facilities: unknown facility")

// Logger is the logging interface passed to facilities that log.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registrar is the part of the registry that accepts facilities.
type Registrar interface {
	RegisterLoadSource(f registry.StorageFacility)
	RegisterSaveDestination(f registry.StorageFacility)
	SetSaveDedup(enabled bool)
}

// Set is the opened facilities for one configuration. Each facility is
// opened once even when it is both a load source and the save destination.
type Set struct {
	LoadSources     []registry.StorageFacility
	SaveDestination registry.StorageFacility

	// FS is the filesystem store when configured, for Watch.
	FS *fsstore.Store

	// DB is the SQLite database when configured. The audit trail shares it.
	DB *database.DB

	cfg     config.StorageConfig
	opened  map[string]registry.StorageFacility
	closers []func() error
	checks  map[string]HealthChecker
}

// Open connects every facility cfg names. On failure, facilities opened so
// far are closed.
func Open(ctx context.Context, cfg config.StorageConfig, logger Logger) (*Set, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	s := &Set{
		cfg:    cfg,
		opened: make(map[string]registry.StorageFacility),
		checks: make(map[string]HealthChecker),
	}

	for _, name := range cfg.LoadSources {
		f, err := s.open(ctx, name, logger)
		if err != nil {
			s.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("load source %s: %w", name, err)
		}
		s.LoadSources = append(s.LoadSources, f)
	}
	if cfg.SaveDestination != "" {
		f, err := s.open(ctx, cfg.SaveDestination, logger)
		if err != nil {
			s.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("save destination %s: %w", cfg.SaveDestination, err)
		}
		s.SaveDestination = f
	}

	logger.Info("storage facilities opened",
		"load_sources", cfg.LoadSources,
		"save_destination", cfg.SaveDestination,
		"dedup", cfg.Dedup,
	)
	return s, nil
}

func (s *Set) open(ctx context.Context, name string, logger Logger) (registry.StorageFacility, error) {
	if f, ok := s.opened[name]; ok {
		return f, nil
	}

	var f registry.StorageFacility
	switch name {
	case config.FacilityHeap:
		f = heapstore.New()

	case config.FacilityFS:
		fs := fsstore.New(s.cfg.FS.Root)
		fs.SetLogger(logger)
		s.FS = fs
		f = fs

	case config.FacilityYAML:
		f = yamlstore.New(s.cfg.YAML.Path)

	case config.FacilitySQLite:
		db, err := database.Open(ctx, database.Config{
			Path:        s.cfg.SQLite.Path,
			WALMode:     s.cfg.SQLite.WALMode,
			BusyTimeout: s.cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.checks[name] = db
		s.DB = db
		store, err := sqlstore.New(ctx, db)
		if err != nil {
			return nil, err
		}
		f = store

	case config.FacilityMQTT:
		mcfg := s.cfg.MQTT
		if mcfg.Broker.ClientID == "" {
			mcfg.Broker.ClientID = "graylogic-registry-" + uuid.NewString()[:8]
		}
		client, err := mqtt.Connect(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		client.SetLogger(logger)
		s.closers = append(s.closers, client.Close)
		s.checks[name] = client
		f = mqttstore.New(client, client.Topics(), client.QoS(),
			time.Duration(mcfg.LoadQuiet)*time.Millisecond)

	case config.FacilityInfluxDB:
		client, err := influxdb.Connect(ctx, s.cfg.InfluxDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		s.checks[name] = client
		f = influxstore.New(client)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacility, name)
	}

	s.opened[name] = f
	return f, nil
}

// Register hands the facilities to r in configuration order and applies the
// dedup setting.
func (s *Set) Register(r Registrar) {
	for _, f := range s.LoadSources {
		r.RegisterLoadSource(f)
	}
	if s.SaveDestination != nil {
		r.RegisterSaveDestination(s.SaveDestination)
	}
	r.SetSaveDedup(s.cfg.Dedup)
}

// HealthChecker is implemented by connections with an active health check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Health runs the health check of every networked or database facility and
// returns the result per facility name. A nil entry means healthy.
func (s *Set) Health(ctx context.Context) map[string]error {
	out := make(map[string]error, len(s.checks))
	for name, hc := range s.checks {
		out[name] = hc.HealthCheck(ctx)
	}
	return out
}

// Close closes connections in reverse opening order and returns the first
// error.
func (s *Set) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
