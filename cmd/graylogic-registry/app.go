package main

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-registry/internal/metrics"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/schemas"
	"github.com/nerrad567/gray-logic-registry/internal/storage/facilities"
)

// app is a registry with the built-in schemas and the configured storage,
// loaded from every load source.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	registry *registry.Registry
	schemas  *schemas.Set
	storage  *facilities.Set
	metrics  *metrics.Collector
}

// loadConfig reads the configuration. Commands other than serve log to
// stderr so their output stays clean.
func loadConfig(opts *options, serving bool) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !serving {
		cfg.Logging.Output = "stderr"
	}
	return cfg, nil
}

// openApp builds the registry. hooks run before the initial load so change
// listeners see loaded values.
func openApp(ctx context.Context, cfg *config.Config, hooks ...func(*app)) (*app, error) {
	log := logging.New(cfg.Logging, version)

	reg := registry.New()
	reg.SetLogger(log.With("component", "registry"))

	collector := metrics.New(nil)
	reg.SetObserver(collector)
	reg.OnChange(collector.Changed)

	set, err := schemas.Register(reg)
	if err != nil {
		return nil, fmt.Errorf("registering schemas: %w", err)
	}

	store, err := facilities.Open(ctx, cfg.Storage, log.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	store.Register(reg)

	a := &app{cfg: cfg, log: log, registry: reg, schemas: set, storage: store, metrics: collector}
	for _, hook := range hooks {
		hook(a)
	}

	if len(store.LoadSources) > 0 {
		if err := reg.Load(ctx, registry.RootPath()); err != nil {
			log.Warn("initial load incomplete", "error", err)
		}
	}
	return a, nil
}

// close releases storage connections and flushes the logger.
func (a *app) close() {
	if err := a.storage.Close(); err != nil {
		a.log.Error("error closing storage", "error", err)
	}
	_ = a.log.Sync() //nolint:errcheck // stderr sync fails on some terminals
}

// resolve accepts numeric or named paths; an empty argument is the root.
func (a *app) resolve(args []string) (registry.Path, error) {
	if len(args) == 0 {
		return registry.RootPath(), nil
	}
	return a.registry.ResolveNamed(args[0])
}

// withApp opens the app for a one-shot command and closes it afterwards.
func withApp(ctx context.Context, opts *options, fn func(*app) error) error {
	cfg, err := loadConfig(opts, false)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
