// Package ocr extracts text from screenshot bands.
//
// Two backends implement the same contract: a local Tesseract engine
// (the default, no network involved) and Google Cloud Vision for
// screenshots Tesseract struggles with. Both group recognized words
// into lines ordered top-to-bottom and keep only words the engine has
// positive confidence in.
//
// Required environment for the Vision backend:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
package ocr

import (
	"context"
	"time"
)

// Service defines the contract for OCR text extraction.
type Service interface {
	// ExtractText extracts text from the image at path.
	// Lines are separated by newlines, ordered top-to-bottom. An image
	// with no recognizable text yields an empty string, not an error.
	ExtractText(ctx context.Context, path string) (string, error)

	// ExtractTextWithMetadata extracts text with additional detail about
	// the recognition pass.
	ExtractTextWithMetadata(ctx context.Context, path string) (*Result, error)
}

// Result contains the outcome of one OCR pass with metadata.
type Result struct {
	// Text is the extracted text, one recognized line per output line.
	Text string `json:"text"`

	// LineCount is the number of recognized lines.
	LineCount int `json:"line_count"`

	// Confidence is the average word confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// ProcessedAt is when the OCR pass completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the OCR pass took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}
