package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hr-assistant/internal/contextutil"
	"hr-assistant/internal/index"
)

// StatsHandler reports the current state of the vector index.
type StatsHandler struct {
	index      *index.Index
	collection string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(ix *index.Index, collection string) *StatsHandler {
	return &StatsHandler{index: ix, collection: collection}
}

// ServeHTTP returns the indexed document count and collection name.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.index.Stats(ctx, h.collection)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get index stats", "error", err)
		if errors.Is(err, index.ErrIndexUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Vector index unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get index stats")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.ErrorContext(ctx, "failed to encode stats response", "error", err)
	}
}
