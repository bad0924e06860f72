package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/RynoXLI/allformats/internal/catalog"
	"github.com/RynoXLI/allformats/internal/config"
	"github.com/RynoXLI/allformats/internal/events"
	"github.com/RynoXLI/allformats/internal/middleware"
	"github.com/RynoXLI/allformats/internal/ratelimit"
)

const (
	apiTitle   = "All Formats API"
	apiVersion = "1.0.0"
)

// RouterDeps are the collaborators NewRouter wires together
type RouterDeps struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Limiter   *ratelimit.Limiter
	Publisher events.Publisher
	Logger    *slog.Logger
}

// NewRouter builds the chi router with middleware and every API operation
func NewRouter(deps RouterDeps) *chi.Mux {
	cfg := deps.Config

	router := chi.NewRouter()

	// Middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RateLimiter(middleware.RateLimitOptions{
		Limiter:   deps.Limiter,
		Limit:     cfg.RateLimit.Limit,
		Window:    cfg.RateLimit.Window,
		Publisher: deps.Publisher,
		Logger:    deps.Logger,
	}))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, deps.Logger, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, deps.Logger, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Create Huma API
	humaConfig := huma.DefaultConfig(apiTitle, apiVersion)
	humaConfig.Info.Description = "Read-only directory of image and video format specifications"
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.Server.BaseURL},
	}
	// Response bodies stay plain JSON without a $schema link
	humaConfig.CreateHooks = nil
	if !cfg.Server.EnableDocs {
		humaConfig.DocsPath = ""
	}
	humaAPI := humachi.New(router, humaConfig)

	// Register all routes
	RegisterRoutes(humaAPI, &App{
		catalog: deps.Catalog,
		logger:  deps.Logger,
	})

	return router
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Message: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
