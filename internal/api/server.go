package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-registry/internal/audit"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-registry/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-registry/internal/metrics"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Registry is the registry surface the API drives. *registry.Guarded
// implements it.
type Registry interface {
	Get(p registry.Path) (registry.Value, error)
	GetTyped(p registry.Path, want registry.Type) (registry.Value, error)
	Set(p registry.Path, v registry.Value) error
	ParamType(p registry.Path) (registry.Type, error)
	Commit(ctx context.Context, p registry.Path) error
	Export(p registry.Path, depth int, visit registry.Visitor) error
	Load(ctx context.Context, p registry.Path) error
	Save(ctx context.Context, p registry.Path) error
	ResolveNamed(s string) (registry.Path, error)
	NameOf(p registry.Path) (string, error)
}

// HealthReporter reports the health of each storage facility by name.
type HealthReporter interface {
	Health(ctx context.Context) map[string]error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Registry Registry
	Storage  HealthReporter     // optional
	Metrics  *metrics.Collector // optional; enables /metrics and request counting
	Audit    audit.Repository   // optional; records mutations and enables /audit
	Hub      *Hub               // optional; created by Start when nil
	Version  string
}

// Server is the HTTP API server for the registry.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	registry Registry
	storage  HealthReporter
	metrics  *metrics.Collector
	audit    audit.Repository
	version  string
	server   *http.Server
	listener net.Listener
	hub      *Hub
	cancel   context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		registry: deps.Registry,
		storage:  deps.Storage,
		metrics:  deps.Metrics,
		audit:    deps.Audit,
		version:  deps.Version,
		hub:      deps.Hub,
	}, nil
}

// Hub returns the server's WebSocket hub, or nil before Start when none was
// injected.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening for HTTP connections.
//
// The listener is bound before Start returns so that address errors surface
// to the caller; serving happens in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		if s.metrics != nil {
			s.hub.SetClientGauge(s.metrics.WebSocketClients)
		}
	}
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", ln.Addr().String(),
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
