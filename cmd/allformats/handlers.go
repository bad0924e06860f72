package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RynoXLI/allformats/internal/catalog"
)

// App holds the dependencies shared by the handlers
type App struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func init() {
	// Render every huma error, including validation failures, as {"error": msg}
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		details := make([]string, 0, len(errs))
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}
		if len(details) > 0 {
			msg += ": " + strings.Join(details, "; ")
		}
		return &ErrorResponse{status: status, Message: msg}
	}
}

// parseLimit returns nil unless raw is a positive integer
func parseLimit(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// parseOffset returns 0 unless raw is a non-negative integer
func parseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RegisterRoutes registers all Huma operations
func RegisterRoutes(api huma.API, app *App) {
	// Health check
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Check if the API server is running and the catalog is loaded",
		Tags:        []string{"health"},
	}, func(_ context.Context, _ *struct{}) (*HealthOutput, error) {
		if app.catalog.Len() == 0 {
			return nil, huma.Error503ServiceUnavailable("Catalog is empty")
		}
		resp := &HealthOutput{}
		resp.Body.Status = "ok"
		resp.Body.Formats = app.catalog.Len()
		return resp, nil
	})

	// List formats
	huma.Register(api, huma.Operation{
		OperationID: "list-formats",
		Method:      http.MethodGet,
		Path:        "/api/formats",
		Summary:     "List formats",
		Description: "Filter, search and paginate the format catalog",
		Tags:        []string{"formats"},
	}, func(_ context.Context, input *FormatListInput) (*FormatListOutput, error) {
		page := app.catalog.Query(catalog.Query{
			Category: input.Category,
			Platform: input.Platform,
			Search:   input.Search,
			Limit:    parseLimit(input.Limit),
			Offset:   parseOffset(input.Offset),
		})

		resp := &FormatListOutput{}
		resp.Body = FormatListResponse{
			Formats:    page.Formats,
			Total:      page.Total,
			Categories: app.catalog.Categories(),
			Pagination: Pagination{
				Offset:  page.Offset,
				Limit:   page.Limit,
				HasMore: page.HasMore,
			},
		}
		return resp, nil
	})

	// Get a single format
	huma.Register(api, huma.Operation{
		OperationID: "get-format",
		Method:      http.MethodGet,
		Path:        "/api/formats/{id}",
		Summary:     "Get a format",
		Description: "Look up a single format by its id",
		Tags:        []string{"formats"},
	}, func(_ context.Context, input *FormatInput) (*FormatOutput, error) {
		format, err := app.catalog.Lookup(input.ID)
		if err != nil {
			if errors.Is(err, catalog.ErrFormatNotFound) {
				return nil, huma.Error404NotFound("Format not found")
			}
			app.logger.Error("Failed to look up format", "error", err, "id", input.ID)
			return nil, huma.Error500InternalServerError("Error looking up format")
		}

		resp := &FormatOutput{}
		resp.Body.Format = format
		return resp, nil
	})

	// List platforms
	huma.Register(api, huma.Operation{
		OperationID: "list-platforms",
		Method:      http.MethodGet,
		Path:        "/api/platforms",
		Summary:     "List platforms",
		Description: "Distinct platforms with the number of formats each contributes",
		Tags:        []string{"platforms"},
	}, func(_ context.Context, _ *struct{}) (*PlatformListOutput, error) {
		resp := &PlatformListOutput{}
		resp.Body.Platforms = app.catalog.Platforms()
		return resp, nil
	})

	// List categories
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/api/categories",
		Summary:     "List categories",
		Description: "Format categories with their format counts",
		Tags:        []string{"categories"},
	}, func(_ context.Context, _ *struct{}) (*CategoryListOutput, error) {
		resp := &CategoryListOutput{}
		resp.Body.Categories = app.catalog.Categories()
		return resp, nil
	})
}
