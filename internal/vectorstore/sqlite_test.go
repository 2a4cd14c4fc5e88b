package vectorstore

import (
	"context"
	"math"
	"testing"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, dir
}

func unit(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

func seedPoints() []Point {
	return []Point{
		{
			ID:      "vacation-1",
			Vector:  unit([]float32{1, 0.2, 0}),
			Content: "Vacation accrues at 1.25 days per month.",
			Meta:    map[string]any{"filename": "vacation-policy", "category": "policies"},
		},
		{
			ID:      "benefits-1",
			Vector:  unit([]float32{0.9, 0.5, 0}),
			Content: "Health insurance begins on day one.",
			Meta:    map[string]any{"filename": "benefits-guide", "category": "benefits"},
		},
		{
			ID:      "devices-1",
			Vector:  unit([]float32{0, 0, 1}),
			Content: "IT issues laptops on your first day.",
			Meta:    map[string]any{"filename": "devices", "category": "it"},
		},
	}
}

func TestSQLiteStoreSearchRanking(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "hr_documents", seedPoints()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	query := unit([]float32{1, 0.1, 0})
	results, err := store.Search(ctx, "hr_documents", query, 2, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].PointID != "vacation-1" {
		t.Errorf("expected vacation-1 first, got %q", results[0].PointID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by score: %v then %v", results[0].Score, results[1].Score)
	}
	if results[0].Content != "Vacation accrues at 1.25 days per month." {
		t.Errorf("content not returned: %q", results[0].Content)
	}
	if results[0].Meta["category"] != "policies" {
		t.Errorf("metadata not returned: %+v", results[0].Meta)
	}
}

func TestSQLiteStoreSearchFilter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "hr_documents", seedPoints()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	results, err := store.Search(ctx, "hr_documents", unit([]float32{1, 0.1, 0}), 10,
		map[string]string{"category": "benefits"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].PointID != "benefits-1" {
		t.Errorf("filter returned wrong point %q", results[0].PointID)
	}
}

func TestSQLiteStoreSearchFilterNoMatches(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Only benefits content is indexed.
	if err := store.Upsert(ctx, "hr_documents", []Point{
		{
			ID:      "benefits-1",
			Vector:  unit([]float32{0.9, 0.5, 0}),
			Content: "Health insurance begins on day one.",
			Meta:    map[string]any{"filename": "benefits-guide", "category": "benefits"},
		},
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	results, err := store.Search(ctx, "hr_documents", unit([]float32{1, 0.1, 0}), 10,
		map[string]string{"category": "leave"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("filter on an absent category should match nothing, got %d results", len(results))
	}
}

func TestSQLiteStoreUpsertUpdatesExisting(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	points := seedPoints()
	if err := store.Upsert(ctx, "hr_documents", points); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	points[0].Content = "Updated vacation text."
	if err := store.Upsert(ctx, "hr_documents", points[:1]); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	count, err := store.Count(ctx, "hr_documents")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 points after update, got %d", count)
	}

	results, err := store.Search(ctx, "hr_documents", points[0].Vector, 1, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Content != "Updated vacation text." {
		t.Errorf("content not updated: %q", results[0].Content)
	}
}

func TestSQLiteStoreCollectionsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "hr_documents", seedPoints()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	results, err := store.Search(ctx, "other_collection", unit([]float32{1, 0, 0}), 5, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from another collection, got %d", len(results))
	}

	count, err := store.Count(ctx, "other_collection")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
}

func TestSQLiteStoreClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "hr_documents", seedPoints()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := store.Clear(ctx, "hr_documents"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	count, err := store.Count(ctx, "hr_documents")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0 after clear, got %d", count)
	}

	results, err := store.Search(ctx, "hr_documents", unit([]float32{1, 0, 0}), 5, nil)
	if err != nil {
		t.Fatalf("Search after clear failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after clear, got %d", len(results))
	}
}

func TestSQLiteStoreClearNonexistentCollection(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Clear(context.Background(), "never-created"); err != nil {
		t.Errorf("clearing a nonexistent collection should be a no-op, got: %v", err)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Upsert(ctx, "hr_documents", seedPoints()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	count, err := reopened.Count(ctx, "hr_documents")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 points after reopen, got %d", count)
	}
}

func TestSQLiteStoreSearchInvalidK(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Search(context.Background(), "hr_documents", unit([]float32{1, 0, 0}), 0, nil); err == nil {
		t.Fatal("expected error for k = 0")
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.14159, 0}
	got := bytesToFloat32Slice(float32SliceToBytes(vec))
	if len(got) != len(vec) {
		t.Fatalf("length mismatch: %d != %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("element %d: %v != %v", i, got[i], vec[i])
		}
	}
}
