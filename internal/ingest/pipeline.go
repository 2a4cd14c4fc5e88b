package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hr-assistant/internal/contextutil"
)

// chunksFileName is the processed-chunks artifact written by the pipeline.
const chunksFileName = "chunks.json"

// Pipeline orchestrates document ingestion: load, enrich, chunk, and
// optionally persist the chunk set.
type Pipeline struct {
	chunker *Chunker
}

// NewPipeline creates a new ingestion pipeline using the given chunker.
func NewPipeline(chunker *Chunker) *Pipeline {
	return &Pipeline{chunker: chunker}
}

// Run executes the full ingestion pipeline: load all documents from
// inputDir, enrich their metadata, and chunk them. If no documents are
// found, an empty slice is returned and nothing else happens. When save is
// true the chunk set is written to outputDir/chunks.json, replacing any
// prior file.
func (p *Pipeline) Run(ctx context.Context, inputDir, outputDir string, save bool) ([]Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting document ingestion pipeline", "input_dir", inputDir)

	documents, err := LoadAll(ctx, inputDir)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		logger.WarnContext(ctx, "no documents found", "input_dir", inputDir)
		return []Chunk{}, nil
	}

	documents = Enrich(ctx, documents)
	chunks := p.chunker.Chunk(ctx, documents)

	if save {
		if err := SaveChunks(ctx, chunks, outputDir); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "ingestion pipeline complete", "documents", len(documents), "chunks", len(chunks))
	return chunks, nil
}

// SaveChunks writes the chunk set to outputDir/chunks.json for inspection
// and reuse by later index builds.
func SaveChunks(ctx context.Context, chunks []Chunk, outputDir string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}

	outputFile := filepath.Join(outputDir, chunksFileName)
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write chunks file: %w", err)
	}

	logger.InfoContext(ctx, "saved chunks", "count", len(chunks), "path", outputFile)
	return nil
}

// LoadChunks reads a previously saved chunk set from inputDir/chunks.json.
// A missing file is not an error; it returns an empty slice.
func LoadChunks(ctx context.Context, inputDir string) ([]Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	inputFile := filepath.Join(inputDir, chunksFileName)
	data, err := os.ReadFile(inputFile)
	if err != nil {
		if os.IsNotExist(err) {
			logger.InfoContext(ctx, "no processed chunks found", "path", inputFile)
			return []Chunk{}, nil
		}
		return nil, fmt.Errorf("failed to read chunks file: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to parse chunks file: %w", err)
	}

	logger.InfoContext(ctx, "loaded chunks", "count", len(chunks), "path", inputFile)
	return chunks, nil
}
