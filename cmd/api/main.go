// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/d-wern/portfolio-assistant/internal/config"
	"github.com/d-wern/portfolio-assistant/internal/email"
	"github.com/d-wern/portfolio-assistant/internal/handler"
	"github.com/d-wern/portfolio-assistant/internal/intent"
	"github.com/d-wern/portfolio-assistant/internal/middleware"
	natsclient "github.com/d-wern/portfolio-assistant/internal/nats"
	"github.com/d-wern/portfolio-assistant/internal/openrouter"
	"github.com/d-wern/portfolio-assistant/internal/pool"
	"github.com/d-wern/portfolio-assistant/internal/profile"
	"github.com/d-wern/portfolio-assistant/internal/service"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
	"github.com/d-wern/portfolio-assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "portfolio-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when configured. Exchange recording is optional;
	// the assistant serves traffic without it.
	var (
		natsClient *natsclient.Client
		recorder   *natsclient.StreamManager
	)
	if cfg.NATSURL != "" {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, exchange recording disabled", zap.Error(err))
		} else {
			defer natsClient.Close()

			recorder = natsclient.NewStreamManager(natsClient)
			if err := recorder.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure exchange stream, recording disabled", zap.Error(err))
				recorder = nil
			}
		}
	}

	// Initialize upstream client
	upstream, err := openrouter.NewClient(openrouter.Config{
		BaseURL: cfg.UpstreamBaseURL,
		APIKey:  cfg.UpstreamAPIKey,
		Referer: cfg.UpstreamReferer,
		Title:   cfg.UpstreamTitle,
		Timeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		log.Fatal("failed to create upstream client", zap.Error(err))
	}

	// Initialize model pool
	poolManager := pool.NewManager(pool.Config{
		ConfigModels:     cfg.ConfigModels,
		FallbackModel:    cfg.FallbackModel,
		PoolSize:         cfg.PoolSize,
		TTL:              cfg.PoolTTL,
		DiscoveryEnabled: cfg.DiscoveryEnabled,
	}, upstream, log)

	// Initialize profile assembler
	owner := profile.Owner{
		Name:     cfg.OwnerName,
		Email:    cfg.OwnerEmail,
		Location: cfg.OwnerLocation,
		Title:    cfg.OwnerTitle,
	}
	if birthday, err := time.Parse("2006-01-02", cfg.OwnerBirthday); err != nil {
		log.Warn("invalid owner birthday, age facts disabled", zap.String("value", cfg.OwnerBirthday))
	} else {
		owner.Birthday = birthday
	}

	var snapshots *profile.SnapshotCache
	if cfg.SnapshotURL != "" {
		snapshots = profile.NewSnapshotCache(profile.NewHTTPFetcher(cfg.SnapshotURL), profile.SnapshotTTL, log)
	}
	assembler := profile.NewAssembler(owner, snapshots)

	// Initialize pipeline services
	synthesizer := email.NewSynthesizer(cfg.OwnerName, cfg.OwnerEmail)
	router := intent.NewRouter(poolManager, upstream, cfg.RouteAttempts, log)
	assistant := service.NewAssistant(poolManager, upstream, router, assembler, synthesizer, recorder, service.Config{
		ContextAttempts:  cfg.ContextAttempts,
		DraftAttempts:    cfg.DraftAttempts,
		FallbackPerCycle: cfg.FallbackPerCycle,
		RetryBaseDelay:   cfg.RetryBaseDelay,
	}, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	assistantHandler := handler.NewAssistantHandler(assistant, log)
	modelsHandler := handler.NewModelsHandler(poolManager)

	var exchangeReader handler.ExchangeReader
	if recorder != nil {
		exchangeReader = recorder
	}
	exchangesHandler := handler.NewExchangesHandler(exchangeReader)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public assistant surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Post("/assistant", assistantHandler.Ask)
			r.Get("/models", modelsHandler.List)
		})

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.RequireScope("admin"))

			r.Get("/exchanges", exchangesHandler.List)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
