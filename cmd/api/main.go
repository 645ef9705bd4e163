// Package main is the entry point for the event concierge API server.
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
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatherly-ai/event-concierge/internal/chat"
	"github.com/gatherly-ai/event-concierge/internal/config"
	"github.com/gatherly-ai/event-concierge/internal/dispatch"
	"github.com/gatherly-ai/event-concierge/internal/handler"
	"github.com/gatherly-ai/event-concierge/internal/llm"
	"github.com/gatherly-ai/event-concierge/internal/middleware"
	"github.com/gatherly-ai/event-concierge/internal/notify"
	"github.com/gatherly-ai/event-concierge/internal/pipeline"
	"github.com/gatherly-ai/event-concierge/internal/places"
	"github.com/gatherly-ai/event-concierge/internal/plan"
	"github.com/gatherly-ai/event-concierge/internal/session"
	"github.com/gatherly-ai/event-concierge/internal/store"
	"github.com/gatherly-ai/event-concierge/pkg/logger"
	"github.com/gatherly-ai/event-concierge/pkg/tracing"
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
		tp, err := tracing.InitTracer(ctx, "event-concierge", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	natsClient, err := notify.Connect(ctx, notify.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	// Ensure the notifications stream exists
	publisher := notify.NewPublisher(natsClient)
	if err := publisher.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", "error", err)
		os.Exit(1)
	}

	// Initialize the LLM client, preferring Anthropic when both keys
	// are set.
	var llmClient llm.Client
	if cfg.AnthropicAPIKey != "" {
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
		if err != nil {
			log.Warn("failed to create Anthropic client, chat features degraded")
		}
	} else if cfg.OpenAIAPIKey != "" {
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			log.Warn("failed to create OpenAI client, chat features degraded")
		}
	}

	// Domain adapters
	chatAdapter := chat.NewExtractor(llmClient, cfg.ChatModel, log)
	planner := plan.NewSynthesizer(llmClient, cfg.PlanModel, log)
	searcher := places.NewClient(cfg.PlacesEndpoint, cfg.PlacesAPIKey, log)
	dataStore := store.NewClient(cfg.StoreEndpoint, cfg.StoreToken, log)

	pipe := pipeline.New(dataStore, publisher, log)
	dispatcher := dispatch.NewDispatcher(searcher, log)
	manager := session.NewManager(chatAdapter, dispatcher, planner, pipe, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	sessionHandler := handler.NewSessionHandler(manager, log)
	turnHandler := handler.NewTurnHandler(manager, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Get("/messages", sessionHandler.Messages)

				r.Post("/utterances", turnHandler.Utterance)
				r.Post("/actions", turnHandler.Action)
				r.Post("/confirm", turnHandler.Confirm)
			})
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
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
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
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
