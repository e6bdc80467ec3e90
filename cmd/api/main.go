// Package main is the entry point for the summarizer API server.
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

	"github.com/capitalize-ai/conversation-summarizer/internal/app"
	"github.com/capitalize-ai/conversation-summarizer/internal/config"
	"github.com/capitalize-ai/conversation-summarizer/internal/handler"
	"github.com/capitalize-ai/conversation-summarizer/internal/middleware"
	natsclient "github.com/capitalize-ai/conversation-summarizer/internal/nats"
	"github.com/capitalize-ai/conversation-summarizer/internal/service"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
	"github.com/capitalize-ai/conversation-summarizer/pkg/tracing"
)

const serviceName = "conversation-summarizer"

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
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Summarization pipeline
	router := app.NewTransport(cfg, log)
	if !router.Configured() {
		log.Warn("no LLM provider configured, summaries will fail until an API key is set")
	}
	pipeline := app.NewPipeline(cfg, router, log)

	orgs, err := app.LoadOrganizations(cfg, log)
	if err != nil {
		log.Error("failed to load organizations", zap.Error(err))
		os.Exit(1)
	}
	summarySvc := service.NewSummaryService(pipeline.Summarizer, orgs, cfg.SummaryTimeout, log)

	// NATS worker
	var natsChecker handler.Checker
	if cfg.NATSEnabled {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
			Name:     serviceName,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()
		natsChecker = natsClient

		responder := natsclient.NewResponder(natsClient, summarySvc, cfg.SummarySubject, cfg.SummaryQueue, cfg.SummaryTimeout, log,
			natsclient.WithConcurrency(cfg.NATSConcurrency))
		if err := responder.Start(); err != nil {
			log.Error("failed to start summary responder", zap.Error(err))
			os.Exit(1)
		}
		defer responder.Stop()
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsChecker, router.Configured)
	summaryHandler := handler.NewSummaryHandler(summarySvc, log)
	organizationHandler := handler.NewOrganizationHandler(orgs, pipeline.Selector.Models(), router.Models, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/summaries", summaryHandler.Create)
		r.Get("/organization", organizationHandler.Current)
		r.Get("/models", organizationHandler.Models)
		r.With(middleware.RequireScope("admin")).Get("/organizations", organizationHandler.List)
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
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal, reloading organizations on SIGHUP
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range quit {
		if sig != syscall.SIGHUP {
			break
		}
		reloadOrganizations(cfg, orgs, log)
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func reloadOrganizations(cfg *config.Config, orgs *service.OrganizationService, log *logger.Logger) {
	if cfg.OrganizationsFile == "" {
		return
	}
	profiles, err := service.LoadOrganizations(cfg.OrganizationsFile)
	if err != nil {
		log.Error("failed to reload organizations, keeping previous set", zap.Error(err))
		return
	}
	orgs.Replace(profiles)
}
