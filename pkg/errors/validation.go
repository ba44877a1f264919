package errors

import (
	"strings"
)

// MaxBlockSpan is the largest allowed difference between the end and start
// block of a single fetch.
const MaxBlockSpan = 100

// ValidateBlockRange checks a requested block range before anything is fetched.
//
// Validation rules:
//   - Block numbers cannot be negative
//   - End cannot precede start
//   - end - start cannot exceed [MaxBlockSpan]
func ValidateBlockRange(start, end int) error {
	if start < 0 || end < 0 {
		return New(ErrCodeInvalidRange, "block numbers must be non-negative (got %d..%d)", start, end)
	}
	if end < start {
		return New(ErrCodeInvalidRange, "end block %d precedes start block %d", end, start)
	}
	if span := end - start; span > MaxBlockSpan {
		return New(ErrCodeRangeTooLarge, "range spans %d blocks (max %d)", span, MaxBlockSpan)
	}
	return nil
}

// ValidateCanvasSize rejects canvases too small to hold the drawing margins.
func ValidateCanvasSize(width, height, margin float64) error {
	if width <= 2*margin || height <= 2*margin {
		return New(ErrCodeInvalidInput, "canvas %.0fx%.0f is smaller than its %.0fpx margins", width, height, margin)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
