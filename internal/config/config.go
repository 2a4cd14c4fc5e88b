package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	RawDataDir       string
	ProcessedDataDir string

	VectorBackend string
	VectorDBDir   string
	QdrantURL     string
	Collection    string
	VectorSize    int

	EmbeddingBaseURL string
	EmbeddingModel   string
	LLMBaseURL       string
	LLMModel         string
	LLMAPIKey        string

	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Temperature  float32

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent directory, it is
// loaded automatically; variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory first

	// Walk up to find a .env at the project root
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		RawDataDir:       getEnv("RAW_DATA_DIR", "./data/raw"),
		ProcessedDataDir: getEnv("PROCESSED_DATA_DIR", "./data/processed"),
		VectorBackend:    getEnv("VECTOR_BACKEND", "sqlite"),
		VectorDBDir:      getEnv("VECTOR_DB_DIR", "./vector_db"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		Collection:       getEnv("COLLECTION_NAME", "hr_documents"),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModel:         getEnv("LLM_MODEL", "phi3"),
		LLMAPIKey:        getEnv("LLM_API_KEY", "dummy-key"),
		APIPort:          getEnv("API_PORT", "9000"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	// VECTOR_SIZE must match the output dimensionality of the embedding model.
	// all-MiniLM-L6-v2 produces 384-dimensional vectors. If the model changes,
	// the index must be rebuilt.
	cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 384)
	if err != nil {
		return nil, err
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}

	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be non-negative and less than CHUNK_SIZE")
	}

	cfg.TopK, err = getEnvInt("TOP_K", 5)
	if err != nil {
		return nil, err
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}

	tempStr := getEnv("LLM_TEMPERATURE", "0.1")
	temp, err := strconv.ParseFloat(tempStr, 32)
	if err != nil {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be a valid number: %w", err)
	}
	if temp < 0 || temp > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	cfg.Temperature = float32(temp)

	switch cfg.VectorBackend {
	case "sqlite", "qdrant":
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"sqlite\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", level)
	}
}
