package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Renderer limits
	MaxScenes        int
	MaxTotalDuration float64 // seconds of final timeline

	// Storage
	StorageRoot string // parent of the tmp workspace and published outputs

	// Encoding
	FFmpegBinary string // optional; empty disables MP4 muxing and non-WAV audio decode

	// Ollama (used for placeholder scene-line generation)
	OllamaBaseURL string
	OllamaModel   string

	// Worker
	MaxConcurrentJobs int
	RenderWorkers     int // parallel frame renderers per job; 0 = GOMAXPROCS
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		MaxScenes:          getEnvInt("RENDERER_MAX_SCENES", 24),
		MaxTotalDuration:   getEnvFloat("RENDERER_MAX_TOTAL_DURATION_SECONDS", 900),
		StorageRoot:        getEnv("RENDERER_STORAGE_ROOT", "storage"),
		FFmpegBinary:       getEnv("RENDERER_FFMPEG_BINARY", ""),
		OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "llama3.2"),
		MaxConcurrentJobs:  getEnvInt("MAX_CONCURRENT_JOBS", 2),
		RenderWorkers:      getEnvInt("RENDERER_WORKERS", 0),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.MaxScenes < 1 {
		return nil, fmt.Errorf("RENDERER_MAX_SCENES must be positive")
	}

	if cfg.MaxTotalDuration <= 0 {
		return nil, fmt.Errorf("RENDERER_MAX_TOTAL_DURATION_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
