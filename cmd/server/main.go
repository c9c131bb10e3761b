package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/batchledger/internal/adapter/http"
	"github.com/iho/batchledger/internal/adapter/http/handler"
	"github.com/iho/batchledger/internal/adapter/http/middleware"
	"github.com/iho/batchledger/internal/engine"
	"github.com/iho/batchledger/internal/infrastructure/config"
	"github.com/iho/batchledger/internal/infrastructure/logger"
	"github.com/iho/batchledger/internal/infrastructure/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	// Initialize engine
	eng := engine.New(engine.Config{
		Workers: cfg.EngineWorkers,
		Logger:  appLogger,
		Metrics: metrics.New(),
	})

	if err := eng.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start engine")
	}

	// Initialize handlers
	batchHandler := handler.NewBatchHandler(eng, cfg.EngineWaitTimeout)
	auditHandler := handler.NewAuditHandler(eng)
	templateHandler := handler.NewTemplateHandler(eng)
	recurrenceHandler := handler.NewRecurrenceHandler(eng)
	healthHandler := handler.NewHealthHandler(eng)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BatchHandler:      batchHandler,
		AuditHandler:      auditHandler,
		TemplateHandler:   templateHandler,
		RecurrenceHandler: recurrenceHandler,
		HealthHandler:     healthHandler,
		LoggingMiddleware: middleware.NewLoggingMiddleware(appLogger),
		RateLimiter:       middleware.NewRateLimiter(100, 200),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Drain the engine after the HTTP intake is closed
	if err := eng.Stop(); err != nil {
		log.Error().Err(err).Msg("engine shutdown error")
	}

	log.Info().Msg("server stopped")
}
