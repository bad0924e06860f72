package catalog

import "errors"

// ErrFormatNotFound is returned when no format has the requested identifier
var ErrFormatNotFound = errors.New("format not found")

// ErrInvalidCatalog is returned when a catalog document fails validation
var ErrInvalidCatalog = errors.New("invalid catalog")
