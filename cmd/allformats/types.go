package main

import "github.com/RynoXLI/allformats/internal/catalog"

// ErrorResponse is the envelope for every error body the API returns
type ErrorResponse struct {
	status  int
	Message string `json:"error" example:"Format not found" doc:"Error message"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError
func (e *ErrorResponse) GetStatus() int {
	return e.status
}

// Pagination describes the slice of results returned
type Pagination struct {
	Offset  int  `json:"offset"          example:"0"  doc:"Index of the first returned format"`
	Limit   *int `json:"limit,omitempty" example:"10" doc:"Page size; omitted when no limit was requested"`
	HasMore bool `json:"hasMore"                      doc:"Whether formats remain after this page"`
}

// FormatListResponse is the body of GET /api/formats
type FormatListResponse struct {
	Formats    []catalog.Format   `json:"formats"    doc:"Formats in this page"`
	Total      int                `json:"total"      doc:"Number of formats matching the filters before pagination" example:"35"`
	Categories []catalog.Category `json:"categories" doc:"All categories with their format counts"`
	Pagination Pagination         `json:"pagination"`
}

// FormatListInput carries the filters for GET /api/formats. limit and offset
// are read as strings so malformed values degrade to defaults instead of
// failing the request.
type FormatListInput struct {
	Category string `query:"category" example:"social-media" doc:"Category id; \"all\" disables the filter"`
	Platform string `query:"platform" example:"instagram"    doc:"Case-insensitive substring of the platform name"`
	Search   string `query:"search"   example:"story"        doc:"Case-insensitive substring of name, platform or description"`
	Limit    string `query:"limit"    example:"10"           doc:"Page size; non-numeric or non-positive values return every match"`
	Offset   string `query:"offset"   example:"0"            doc:"Index of the first format to return"`
}

// FormatListOutput is the response of GET /api/formats
type FormatListOutput struct {
	Body FormatListResponse
}

// FormatInput identifies a single format
type FormatInput struct {
	ID string `path:"id" example:"instagram-post" doc:"Format id"`
}

// FormatOutput is the response of GET /api/formats/{id}
type FormatOutput struct {
	Body struct {
		Format catalog.Format `json:"format"`
	}
}

// PlatformListOutput is the response of GET /api/platforms
type PlatformListOutput struct {
	Body struct {
		Platforms []catalog.Platform `json:"platforms" doc:"Platforms sorted by name"`
	}
}

// CategoryListOutput is the response of GET /api/categories
type CategoryListOutput struct {
	Body struct {
		Categories []catalog.Category `json:"categories"`
	}
}

// HealthOutput is the health check response
type HealthOutput struct {
	Body struct {
		Status  string `json:"status"  example:"ok" doc:"Service status"`
		Formats int    `json:"formats" example:"35" doc:"Number of formats loaded"`
	}
}
