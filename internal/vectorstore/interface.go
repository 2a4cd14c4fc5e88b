package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks hr-assistant/internal/vectorstore VectorStore

import "context"

// Point represents one indexed vector with its content and metadata payload.
type Point struct {
	ID      string
	Vector  []float32
	Content string
	Meta    map[string]any
}

// SearchResult represents a single similarity search hit. Score is cosine
// similarity: higher means more similar.
type SearchResult struct {
	PointID string
	Score   float32
	Content string
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage backends. Collections
// are named, independently clearable partitions of the store.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k nearest neighbors to the query vector by cosine
	// similarity, most similar first. When filter is non-empty, only points
	// whose metadata matches every filter entry exactly are considered.
	Search(ctx context.Context, collection string, query []float32, k int, filter map[string]string) ([]SearchResult, error)

	// Clear removes the entire collection. Clearing a collection that does
	// not exist is a no-op.
	Clear(ctx context.Context, collection string) error

	// Count returns the number of points stored in the collection.
	Count(ctx context.Context, collection string) (int, error)
}
