package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hr-assistant/internal/contextutil"
	"hr-assistant/internal/ingest"
	"hr-assistant/internal/llm"
	"hr-assistant/internal/vectorstore"
)

// DefaultCollection is the collection shared by the ingestion and query
// paths.
const DefaultCollection = "hr_documents"

// upsertBatchSize bounds peak memory during indexing: chunks are embedded
// and upserted in groups of this many.
const upsertBatchSize = 100

// ErrIndexUnavailable indicates the backing vector store could not be
// opened or queried.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// Result is a retrieved chunk with its similarity score (higher = more
// similar).
type Result struct {
	Content  string
	Metadata ingest.Metadata
	Score    float32
}

// Stats describes the current state of a collection.
type Stats struct {
	DocumentCount  int    `json:"document_count"`
	CollectionName string `json:"collection_name"`
}

// Index embeds chunk content and stores the vectors alongside content and
// metadata in a named collection of the vector store.
type Index struct {
	embedder llm.EmbeddingProvider
	store    vectorstore.VectorStore
}

// New creates a new index over the given embedder and store.
func New(embedder llm.EmbeddingProvider, store vectorstore.VectorStore) *Index {
	return &Index{
		embedder: embedder,
		store:    store,
	}
}

// Upsert embeds each chunk's content and stores it in the collection under
// an internally assigned ID. Chunks are processed in batches of 100; an
// empty chunk set is a no-op.
func (ix *Index) Upsert(ctx context.Context, collection string, chunks []ingest.Chunk) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		return nil
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := ix.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, chunk := range batch {
			points[i] = vectorstore.Point{
				ID:      uuid.New().String(),
				Vector:  embeddings[i],
				Content: chunk.Content,
				Meta:    chunk.Metadata.ToMap(),
			}
		}

		if err := ix.store.Upsert(ctx, collection, points); err != nil {
			return fmt.Errorf("failed to upsert batch: %w", err)
		}

		logger.InfoContext(ctx, "indexed batch", "batch", start/upsertBatchSize+1, "size", len(batch))
	}

	logger.InfoContext(ctx, "indexing completed", "collection", collection, "chunks", len(chunks))
	return nil
}

// Query embeds the query text and returns the k most similar chunks, most
// similar first, optionally restricted to entries whose metadata matches
// the exact-match filter.
func (ix *Index) Query(ctx context.Context, collection, queryText string, k int, filter map[string]string) ([]Result, error) {
	embeddings, err := ix.embedder.EmbedTexts(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	hits, err := ix.store.Search(ctx, collection, embeddings[0], k, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{
			Content:  hit.Content,
			Metadata: ingest.MetadataFromMap(hit.Meta),
			Score:    hit.Score,
		}
	}
	return results, nil
}

// Clear removes the entire collection. Clearing a nonexistent collection is
// a no-op.
func (ix *Index) Clear(ctx context.Context, collection string) error {
	if err := ix.store.Clear(ctx, collection); err != nil {
		return fmt.Errorf("failed to clear collection %s: %w", collection, err)
	}
	return nil
}

// Stats returns the current entry count for the collection. When the
// backing store is unavailable the error wraps ErrIndexUnavailable.
func (ix *Index) Stats(ctx context.Context, collection string) (Stats, error) {
	count, err := ix.store.Count(ctx, collection)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return Stats{
		DocumentCount:  count,
		CollectionName: collection,
	}, nil
}
