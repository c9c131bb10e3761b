package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/batchledger/internal/adapter/http/handler"
	"github.com/iho/batchledger/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BatchHandler      *handler.BatchHandler
	AuditHandler      *handler.AuditHandler
	TemplateHandler   *handler.TemplateHandler
	RecurrenceHandler *handler.RecurrenceHandler
	HealthHandler     *handler.HealthHandler
	LoggingMiddleware *middleware.LoggingMiddleware
	RateLimiter       *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Batches
		r.Route("/batches", func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.With(cfg.RateLimiter.Limit).Post("/", cfg.BatchHandler.Submit)
			} else {
				r.Post("/", cfg.BatchHandler.Submit)
			}
			r.Get("/{id}", cfg.BatchHandler.Get)
			r.Post("/{id}/wait", cfg.BatchHandler.Wait)
		})

		// Audit trail
		r.Route("/audit", func(r chi.Router) {
			r.Get("/blocks", cfg.AuditHandler.Blocks)
			r.Get("/verify", cfg.AuditHandler.Verify)
			r.Get("/export", cfg.AuditHandler.Export)
		})

		// Templates
		r.Route("/templates", func(r chi.Router) {
			r.Post("/", cfg.TemplateHandler.Create)
			r.Get("/", cfg.TemplateHandler.List)
			r.Get("/{id}", cfg.TemplateHandler.Get)
			r.Delete("/{id}", cfg.TemplateHandler.Delete)
			r.Post("/{id}/instantiate", cfg.TemplateHandler.Instantiate)
		})

		// Recurrences
		r.Route("/recurrences", func(r chi.Router) {
			r.Post("/", cfg.RecurrenceHandler.Create)
			r.Get("/", cfg.RecurrenceHandler.List)
			r.Get("/{id}", cfg.RecurrenceHandler.Get)
			r.Put("/{id}", cfg.RecurrenceHandler.Update)
			r.Delete("/{id}", cfg.RecurrenceHandler.Delete)
			r.Post("/run", cfg.RecurrenceHandler.Run)
		})

		// Engine stats
		r.Get("/stats", cfg.BatchHandler.Stats)
	})

	return r
}
