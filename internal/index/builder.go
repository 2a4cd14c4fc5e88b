package index

import (
	"context"
	"fmt"

	"hr-assistant/internal/contextutil"
	"hr-assistant/internal/ingest"
)

// Builder builds the vector index from the HR document set.
type Builder struct {
	pipeline     *ingest.Pipeline
	index        *Index
	collection   string
	rawDir       string
	processedDir string
}

// NewBuilder creates a new index builder.
func NewBuilder(pipeline *ingest.Pipeline, index *Index, collection, rawDir, processedDir string) *Builder {
	return &Builder{
		pipeline:     pipeline,
		index:        index,
		collection:   collection,
		rawDir:       rawDir,
		processedDir: processedDir,
	}
}

// Build populates the vector index. When force is true, documents are
// re-ingested from the raw directory even if a processed chunk set exists;
// otherwise the saved chunks.json is reused, falling back to ingestion when
// it is absent. The existing collection is cleared before indexing so a
// rebuild never leaves stale entries behind. When no documents are found,
// the index is left untouched.
func (b *Builder) Build(ctx context.Context, force bool) (Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var chunks []ingest.Chunk
	var err error

	if force {
		logger.InfoContext(ctx, "processing documents", "input_dir", b.rawDir)
		chunks, err = b.pipeline.Run(ctx, b.rawDir, b.processedDir, true)
	} else {
		logger.InfoContext(ctx, "loading processed chunks", "dir", b.processedDir)
		chunks, err = ingest.LoadChunks(ctx, b.processedDir)
		if err == nil && len(chunks) == 0 {
			logger.InfoContext(ctx, "no processed chunks found, running ingestion pipeline")
			chunks, err = b.pipeline.Run(ctx, b.rawDir, b.processedDir, true)
		}
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to prepare chunks: %w", err)
	}

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no documents to index")
		return Stats{DocumentCount: 0, CollectionName: b.collection}, nil
	}

	logger.InfoContext(ctx, "indexing chunks", "count", len(chunks), "collection", b.collection)

	if err := b.index.Clear(ctx, b.collection); err != nil {
		return Stats{}, err
	}
	if err := b.index.Upsert(ctx, b.collection, chunks); err != nil {
		return Stats{}, err
	}

	stats, err := b.index.Stats(ctx, b.collection)
	if err != nil {
		return Stats{}, err
	}

	logger.InfoContext(ctx, "index build complete", "documents", stats.DocumentCount, "collection", stats.CollectionName)
	return stats, nil
}
