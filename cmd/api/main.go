// Command api is the HoopLens Q&A API server.
//
// Usage:
//
//	hooplens-api
//	API_PORT=8080 hooplens-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/hooplens/hooplens/internal/api"
	"github.com/hooplens/hooplens/internal/cache"
	"github.com/hooplens/hooplens/internal/config"
	"github.com/hooplens/hooplens/internal/llm"
	"github.com/hooplens/hooplens/internal/query"
	"github.com/hooplens/hooplens/internal/stats"
	"github.com/hooplens/hooplens/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Dataset storage backend
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	logger.Info("Storage initialized", "backend", cfg.StorageBackend, "prefix", cfg.DatasetPrefix)

	// LLM client
	chat, err := llm.New(cfg.LLM)
	if err != nil {
		logger.Error("Failed to initialize LLM client", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}
	logger.Info("LLM client initialized", "provider", cfg.LLM.Provider, "model", chat.ModelName())

	// Initialize cache
	appCache := cache.New()

	// Query pipeline
	analyzer := query.NewAnalyzer(chat, cfg.DefaultSeason, cfg.SeasonsList, logger)
	retriever := query.NewRetriever(store, appCache, stats.NewResolver(logger), cfg.DatasetPrefix, logger)
	generator := query.NewGenerator(chat, logger)
	pipeline := query.NewPipeline(analyzer, retriever, generator, logger)

	// Create router
	router := api.NewRouter(pipeline, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // query endpoint waits on the model
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting HoopLens API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		return storage.NewObjectStore(ctx, storage.ObjectStoreConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Secure:    cfg.S3Secure,
			Bucket:    cfg.BucketName(),
		}, logger)
	default:
		return storage.NewLocalStore(cfg.DataDir, logger), nil
	}
}
