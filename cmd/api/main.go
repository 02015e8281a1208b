package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tanmayb/cinerender/internal/api"
	"github.com/tanmayb/cinerender/internal/assets"
	"github.com/tanmayb/cinerender/internal/config"
	"github.com/tanmayb/cinerender/internal/db"
	"github.com/tanmayb/cinerender/internal/pipeline"
	"github.com/tanmayb/cinerender/internal/queue"
	"github.com/tanmayb/cinerender/internal/storage"
	"github.com/tanmayb/cinerender/internal/worker"
)

func main() {
	log.Println("Starting Cinerender API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize the on-disk storage layout
	store, err := storage.New(cfg.StorageRoot)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage root: %s", cfg.StorageRoot)

	// Create API handler
	handler := api.NewHandler(database, q, store)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		exporter := &pipeline.Exporter{FFmpegBinary: cfg.FFmpegBinary}
		if cfg.FFmpegBinary != "" {
			log.Printf("MP4 muxing enabled via %s", cfg.FFmpegBinary)
		} else {
			log.Println("No ffmpeg configured — publishing MJPEG AVI with WAV sidecar")
		}

		limits := pipeline.Limits{
			MaxScenes:        cfg.MaxScenes,
			MaxTotalDuration: cfg.MaxTotalDuration,
		}
		p := pipeline.New(limits, store, exporter, cfg.RenderWorkers)

		assetDir := filepath.Join(cfg.StorageRoot, "assets")
		if err := os.MkdirAll(assetDir, 0o755); err != nil {
			log.Fatalf("Failed to create asset dir: %v", err)
		}
		script := assets.NewScriptService(cfg.OllamaBaseURL, cfg.OllamaModel)
		builder := assets.NewBuilder(script, assetDir)

		w := worker.New(database, q, p, builder)

		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
