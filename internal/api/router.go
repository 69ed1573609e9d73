package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-registry/internal/auth"
)

// healthCheckTimeout bounds the storage probes of /health.
const healthCheckTimeout = 5 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check and metrics (no auth required)
		r.Get("/health", s.handleHealth)
		if s.metrics != nil {
			r.Handle("/metrics", s.metrics.Handler())
		}

		// WebSocket authenticates in the handler; browsers cannot set headers
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermValueRead))
			r.Get("/values", s.handleGetValue)
			r.Get("/values/*", s.handleGetValue)
			r.Get("/export", s.handleExport)
			r.Get("/export/*", s.handleExport)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermValueWrite))
			r.Put("/values/*", s.handleSetValue)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermCommit))
			r.Post("/commit", s.handleCommit)
			r.Post("/commit/*", s.handleCommit)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermStorageSync))
			r.Post("/load", s.handleLoad)
			r.Post("/load/*", s.handleLoad)
			r.Post("/save", s.handleSave)
			r.Post("/save/*", s.handleSave)
		})

		if s.audit != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware(auth.PermAuditRead))
				r.Get("/audit", s.handleListAudit)
			})
		}
	})

	return r
}

// handleHealth returns the server health status with a per-facility
// breakdown. Any failing facility makes the response 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	storage := map[string]string{}

	if s.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		for name, err := range s.storage.Health(ctx) {
			if err != nil {
				storage[name] = err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			storage[name] = "ok"
		}
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"storage": storage,
	})
}
