package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"hr-assistant/internal/index"
	llm_mocks "hr-assistant/internal/llm/mocks"
	"hr-assistant/internal/rag"
	vs_mocks "hr-assistant/internal/vectorstore/mocks"
)

type stubEngine struct {
	result rag.QueryResult
}

func (s *stubEngine) Ask(ctx context.Context, question string) (string, error) {
	return s.result.Answer, nil
}

func (s *stubEngine) AskWithSources(ctx context.Context, question string) (rag.QueryResult, error) {
	return s.result, nil
}

func newTestRouter(t *testing.T) (http.Handler, *vs_mocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := vs_mocks.NewMockVectorStore(ctrl)
	ix := index.New(llm_mocks.NewMockEmbeddingProvider(ctrl), store)

	engine := &stubEngine{
		result: rag.QueryResult{
			Answer:  "15 days per year.",
			Sources: []rag.SourceCitation{{Filename: "vacation-policy", Category: "policies", Excerpt: "..."}},
		},
	}

	return NewRouter(&Deps{Engine: engine, Index: ix, Collection: "hr_documents"}), store
}

func TestRouterAsk(t *testing.T) {
	router, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"question": "How many vacation days do I get?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["answer"] != "15 days per year." {
		t.Errorf("unexpected answer %v", resp["answer"])
	}
}

func TestRouterAskWrongMethod(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRouterStats(t *testing.T) {
	router, store := newTestRouter(t)
	store.EXPECT().Count(gomock.Any(), "hr_documents").Return(7, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats index.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.DocumentCount != 7 || stats.CollectionName != "hr_documents" {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRouterHealth(t *testing.T) {
	router, store := newTestRouter(t)
	store.EXPECT().Count(gomock.Any(), "hr_documents").Return(0, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
