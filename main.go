package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/duodate-app/duodate-api/app/db"
	appLogger "github.com/duodate-app/duodate-api/app/logger"
	"github.com/duodate-app/duodate-api/app/observability/metrics"
	"github.com/duodate-app/duodate-api/app/tracer"
	"github.com/duodate-app/duodate-api/config"
	"github.com/duodate-app/duodate-api/internal/api/dates"
	generativeAI "github.com/duodate-app/duodate-api/internal/api/generative_ai"
	"github.com/duodate-app/duodate-api/internal/api/geo"
	"github.com/duodate-app/duodate-api/internal/api/places"
	api "github.com/duodate-app/duodate-api/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Database (optional) ---
	// Community ideas are a best-effort enrichment; the generation
	// pipeline runs fine without a database.
	var dateRepository dates.Repository
	if dbConfig, err := database.NewDatabaseConfig(&cfg, logger); err != nil {
		logger.Warn("Database config unavailable, community ideas disabled", slog.Any("error", err))
	} else if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Warn("Database migrations failed, community ideas disabled", slog.Any("error", err))
	} else if pool, err := database.Init(dbConfig.ConnectionURL, logger); err != nil {
		logger.Warn("Database pool init failed, community ideas disabled", slog.Any("error", err))
	} else {
		defer pool.Close()
		if database.WaitForDB(ctx, pool, logger) {
			dateRepository = dates.NewPostgresRepository(pool, logger)
		} else {
			logger.Warn("Database not reachable, community ideas disabled")
		}
	}

	// --- Model client ---
	// A missing credential is a designed degradation path: the
	// generator serves its static fallback set without a network call.
	aiClient, err := generativeAI.NewClient(ctx, cfg.AI.Provider, generativeAI.Options{
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, generativeAI.ErrNoAPIKey) {
			logger.Warn("No model API key configured, serving fallback suggestions only")
			aiClient = nil
		} else {
			logger.Error("Failed to create model client", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// --- Geodata providers ---
	geoService := geo.NewServiceImpl(cfg.Geo.GeocodeBaseURL, logger)
	placeService, err := places.NewServiceImpl(cfg.Geo.PlacesBaseURL, cfg.Geo.EventsBaseURL, logger)
	if err != nil {
		// Unlike the model key there is no degraded mode for places.
		logger.Error("Failed to create places service", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency injection ---
	generator := dates.NewGeneratorImpl(aiClient, cfg.AI.Timeout, logger)
	dateService := dates.NewServiceImpl(geoService, placeService, generator, dateRepository, cfg.Geo.DefaultRadiusM, cfg.Geo.DefaultPOILimit, logger)
	dateHandler := dates.NewHandler(dateService, logger)

	mainRouter := api.SetupRouter(&api.Config{
		DateHandler: dateHandler,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
