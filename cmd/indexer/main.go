package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"hr-assistant/internal/config"
	"hr-assistant/internal/index"
	"hr-assistant/internal/ingest"
	"hr-assistant/internal/llm"
	"hr-assistant/internal/vectorstore"
)

var force = flag.Bool("force", false, "Re-process documents even if a processed chunk set exists")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Println(boldGreen("HR document indexer"))
	fmt.Printf("Backend: %s, Collection: %s\n", boldCyan(cfg.VectorBackend), boldCyan(cfg.Collection))
	if *force {
		fmt.Println("Force mode: re-processing documents from", cfg.RawDataDir)
	}
	fmt.Println()

	store, err := vectorstore.New(vectorstore.Config{
		Backend:    cfg.VectorBackend,
		Dir:        cfg.VectorDBDir,
		QdrantURL:  cfg.QdrantURL,
		VectorSize: cfg.VectorSize,
	})
	if err != nil {
		fatal("Failed to create vector store: %v", err)
	}

	chunker, err := ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		fatal("Failed to create chunker: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.VectorSize)
	builder := index.NewBuilder(
		ingest.NewPipeline(chunker),
		index.New(embedder, store),
		cfg.Collection,
		cfg.RawDataDir,
		cfg.ProcessedDataDir,
	)

	stats, err := builder.Build(context.Background(), *force)
	if err != nil {
		fatal("Index build failed: %v", err)
	}

	fmt.Println()
	fmt.Println(boldGreen("Index build complete"))
	fmt.Printf("Collection: %s\n", stats.CollectionName)
	fmt.Printf("Documents indexed: %d\n", stats.DocumentCount)
}

func fatal(format string, args ...any) {
	boldRed := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintln(os.Stderr, boldRed(fmt.Sprintf(format, args...)))
	os.Exit(1)
}
