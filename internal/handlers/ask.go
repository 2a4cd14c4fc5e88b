package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"hr-assistant/internal/contextutil"
	"hr-assistant/internal/index"
	"hr-assistant/internal/rag"
)

// AskHandler handles HTTP requests for HR question answering.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload for questions.
type AskRequest struct {
	Question string `json:"question"`
}

// SourceResponse represents one source citation in the HTTP response.
type SourceResponse struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	Excerpt  string `json:"excerpt"`
}

// AskResponse represents the HTTP response payload for questions.
type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP answers an employee question from the indexed HR documents.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	result, err := h.engine.AskWithSources(ctx, req.Question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		if errors.Is(err, index.ErrIndexUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Vector index unavailable")
			return
		}
		writeError(w, http.StatusBadGateway, "Failed to answer question")
		return
	}

	sources := make([]SourceResponse, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = SourceResponse{
			Filename: src.Filename,
			Category: src.Category,
			Excerpt:  src.Excerpt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AskResponse{Answer: result.Answer, Sources: sources}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
