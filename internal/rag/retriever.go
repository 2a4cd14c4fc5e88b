package rag

import (
	"context"

	"hr-assistant/internal/index"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Retriever wraps the vector index with a fixed top-k similarity query.
type Retriever struct {
	index      *index.Index
	collection string
	k          int
}

// NewRetriever creates a retriever over the given collection. A k of 0 or
// less falls back to DefaultTopK.
func NewRetriever(ix *index.Index, collection string, k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{
		index:      ix,
		collection: collection,
		k:          k,
	}
}

// Retrieve returns the top-k chunks most similar to the question.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]index.Result, error) {
	return r.index.Query(ctx, r.collection, question, r.k, nil)
}
