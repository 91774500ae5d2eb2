package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxItemIDLength bounds caller-supplied identities; they end up in cache
// keys, SVG ids and URLs.
const maxItemIDLength = 256

// ValidateItemID validates a caller-supplied layout item identity.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No '/' (ids travel as a single URL path segment in the HTTP API)
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}

	if len(id) > maxItemIDLength {
		return Item(ErrCodeInvalidItem, id[:32]+"...", "item id too long (max %d characters)", maxItemIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return Item(ErrCodeInvalidItem, id, "item id contains invalid control characters")
		}
	}

	if strings.Contains(id, "/") {
		return Item(ErrCodeInvalidItem, id, "item id cannot contain '/'")
	}

	return nil
}

// ValidateCanvasWidth rejects canvases a layout pass cannot run on.
// A non-positive width is a programmer error, not an item problem.
func ValidateCanvasWidth(width float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) {
		return New(ErrCodeInvalidCanvas, "canvas width must be finite, got %v", width)
	}
	if width <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas width must be positive, got %v", width)
	}
	return nil
}

// ValidateFinite reports whether every coordinate is a finite number.
// name is used in the message, e.g. "ideal x".
func ValidateFinite(itemID, name string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Item(ErrCodeInvalidItem, itemID, "%s must be finite, got %v", name, v)
		}
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
