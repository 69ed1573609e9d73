package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-registry/internal/api"
	"github.com/nerrad567/gray-logic-registry/internal/audit"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// serve runs the API server and, when configured, the filesystem watch until
// ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateSecurity(); err != nil {
		return fmt.Errorf("invalid security config: %w", err)
	}

	var hub *api.Hub
	a, err := openApp(ctx, cfg, func(a *app) {
		hub = api.NewHub(cfg.WebSocket, a.log.With("component", "websocket"))
		a.registry.OnChange(hub.Notifier(a.registry))
	})
	if err != nil {
		return err
	}
	defer a.close()

	log := a.log
	log.Info("starting Gray Logic Registry",
		"version", version,
		"commit", commit,
		"build_date", date,
		"site", cfg.Site.ID,
	)

	hub.SetClientGauge(a.metrics.WebSocketClients)
	guarded := registry.NewGuarded(a.registry)

	var trail audit.Repository
	if a.storage.DB != nil {
		trail = audit.NewSQLiteRepository(a.storage.DB.DB)
	}

	srv, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log.With("component", "api"),
		Registry: guarded,
		Storage:  a.storage,
		Metrics:  a.metrics,
		Audit:    trail,
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if cfg.Storage.FS.Watch && a.storage.FS != nil {
		go func() {
			err := a.storage.FS.Watch(ctx, func(p registry.Path) {
				if err := guarded.Load(ctx, p); err != nil {
					log.Warn("reload after file change failed", "path", p.String(), "error", err)
					return
				}
				log.Debug("reloaded after file change", "path", p.String())
			})
			if err != nil {
				log.Error("filesystem watch stopped", "error", err)
			}
		}()
		log.Info("watching filesystem store", "root", a.storage.FS.Root())
	}

	log.Info("Gray Logic Registry started", "address", srv.Addr())
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
	return nil
}
