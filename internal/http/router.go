package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hr-assistant/internal/handlers"
	"hr-assistant/internal/index"
	"hr-assistant/internal/rag"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine     rag.Engine
	Index      *index.Index
	Collection string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine)
	statsHandler := handlers.NewStatsHandler(deps.Index, deps.Collection)
	healthHandler := handlers.NewHealthHandler(deps.Index, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
	})

	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
