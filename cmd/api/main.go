package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"hr-assistant/internal/config"
	"hr-assistant/internal/http"
	"hr-assistant/internal/index"
	"hr-assistant/internal/llm"
	"hr-assistant/internal/rag"
	"hr-assistant/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize vector store backend
	store, err := vectorstore.New(vectorstore.Config{
		Backend:    cfg.VectorBackend,
		Dir:        cfg.VectorDBDir,
		QdrantURL:  cfg.QdrantURL,
		VectorSize: cfg.VectorSize,
	})
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}
	slog.Info("Vector store ready", "backend", cfg.VectorBackend, "collection", cfg.Collection)

	// Create external service clients
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.VectorSize)
	model := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	slog.Info("Model clients initialized", "embedding_model", cfg.EmbeddingModel, "llm_model", cfg.LLMModel)

	// Wire the query path
	ix := index.New(embedder, store)
	retriever := rag.NewRetriever(ix, cfg.Collection, cfg.TopK)
	engine := rag.NewEngine(retriever, model, cfg.Temperature)
	slog.Info("Answer engine initialized", "top_k", cfg.TopK, "temperature", cfg.Temperature)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:     engine,
		Index:      ix,
		Collection: cfg.Collection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
