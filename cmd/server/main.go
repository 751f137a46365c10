package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/scoutfeed/internal/config"
	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/handlers"
	"github.com/cesargomez89/scoutfeed/internal/llm"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/pipeline"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := repository.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize platform connectors from configured gateway URLs
	conns := connectors.NewManager()
	for platform, baseURL := range cfg.ConnectorURLs {
		conns.Register(platform, connectors.NewRemoteConnector(platform, baseURL))
		appLogger.Info("Registered connector", "platform", platform)
	}

	// LLM enrichment is optional; without an API key every call falls back
	var enrichment llm.Service = llm.Disabled{}
	if cfg.LLMAPIKey != "" {
		enrichment = llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, appLogger)
		appLogger.Info("LLM enrichment enabled", "model", cfg.LLMModel)
	}

	// Initialize pipeline manager
	pm := pipeline.NewManager(db, conns, enrichment, pipeline.Options{
		Workers:       cfg.PipelineWorkers,
		ArtistWorkers: cfg.ArtistWorkers,
		ClusterCount:  cfg.ClusterCount,
	}, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(db, pm, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := pm.Shutdown(ctx); err != nil {
		appLogger.Error("Pipeline shutdown timed out", "error", err)
	}

	log.Println("Server exiting")
}
