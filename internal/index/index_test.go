package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"hr-assistant/internal/ingest"
	llm_mocks "hr-assistant/internal/llm/mocks"
	"hr-assistant/internal/vectorstore"
	vs_mocks "hr-assistant/internal/vectorstore/mocks"
)

func makeChunks(n int) []ingest.Chunk {
	chunks := make([]ingest.Chunk, n)
	for i := range chunks {
		chunks[i] = ingest.Chunk{
			Content: fmt.Sprintf("chunk %d", i),
			Metadata: ingest.Metadata{
				Filename: "vacation-policy",
				Category: "policies",
			},
		}
	}
	return chunks
}

func TestUpsertBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	// 250 chunks split into batches of 100, 100, and 50.
	wantSizes := []int{100, 100, 50}
	for _, size := range wantSizes {
		size := size
		embedder.EXPECT().
			EmbedTexts(gomock.Any(), gomock.Len(size)).
			DoAndReturn(func(ctx context.Context, texts []string) ([][]float32, error) {
				out := make([][]float32, len(texts))
				for i := range out {
					out[i] = []float32{1, 0}
				}
				return out, nil
			})
		store.EXPECT().
			Upsert(gomock.Any(), "hr_documents", gomock.Len(size)).
			DoAndReturn(func(ctx context.Context, collection string, points []vectorstore.Point) error {
				seen := make(map[string]bool)
				for _, p := range points {
					if p.ID == "" {
						t.Error("point without ID")
					}
					if seen[p.ID] {
						t.Errorf("duplicate point ID %s", p.ID)
					}
					seen[p.ID] = true
					if p.Meta["filename"] != "vacation-policy" {
						t.Errorf("metadata not flattened onto point: %+v", p.Meta)
					}
				}
				return nil
			})
	}

	ix := New(embedder, store)
	if err := ix.Upsert(context.Background(), "hr_documents", makeChunks(250)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestUpsertEmptyIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No EXPECT calls: embedding or storing anything fails the test.
	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	ix := New(embedder, store)
	if err := ix.Upsert(context.Background(), "hr_documents", nil); err != nil {
		t.Fatalf("Upsert of empty chunk set failed: %v", err)
	}
}

func TestUpsertEmbeddingError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("embedding service down"))

	ix := New(embedder, store)
	if err := ix.Upsert(context.Background(), "hr_documents", makeChunks(3)); err == nil {
		t.Fatal("expected error from failed embedding")
	}
}

func TestQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	queryVec := []float32{0.6, 0.8}
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), []string{"How many vacation days do I get?"}).
		Return([][]float32{queryVec}, nil)

	store.EXPECT().
		Search(gomock.Any(), "hr_documents", queryVec, 5, nil).
		Return([]vectorstore.SearchResult{
			{
				PointID: "p1",
				Score:   0.92,
				Content: "You accrue 1.25 vacation days per month.",
				Meta:    map[string]any{"filename": "vacation-policy", "category": "policies", "char_count": float64(40)},
			},
		}, nil)

	ix := New(embedder, store)
	results, err := ix.Query(context.Background(), "hr_documents", "How many vacation days do I get?", 5, nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != "You accrue 1.25 vacation days per month." {
		t.Errorf("unexpected content %q", results[0].Content)
	}
	if results[0].Metadata.Filename != "vacation-policy" {
		t.Errorf("metadata not rebuilt: %+v", results[0].Metadata)
	}
	if results[0].Metadata.CharCount != 40 {
		t.Errorf("char_count not rebuilt: %d", results[0].Metadata.CharCount)
	}
	if results[0].Score != 0.92 {
		t.Errorf("unexpected score %v", results[0].Score)
	}
}

func TestQueryStoreErrorWrapsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{1, 0}}, nil)
	store.EXPECT().
		Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database locked"))

	ix := New(embedder, store)
	_, err := ix.Query(context.Background(), "hr_documents", "question", 5, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("error should wrap ErrIndexUnavailable, got: %v", err)
	}
}

func TestStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	store.EXPECT().Count(gomock.Any(), "hr_documents").Return(42, nil)

	ix := New(embedder, store)
	stats, err := ix.Stats(context.Background(), "hr_documents")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.DocumentCount != 42 || stats.CollectionName != "hr_documents" {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStatsErrorWrapsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	store.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("connection refused"))

	ix := New(embedder, store)
	if _, err := ix.Stats(context.Background(), "hr_documents"); !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("error should wrap ErrIndexUnavailable, got: %v", err)
	}
}

func TestClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbeddingProvider(ctrl)
	store := vs_mocks.NewMockVectorStore(ctrl)

	store.EXPECT().Clear(gomock.Any(), "hr_documents").Return(nil)

	ix := New(embedder, store)
	if err := ix.Clear(context.Background(), "hr_documents"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
}
