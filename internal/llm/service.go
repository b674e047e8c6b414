// Package llm provides the language-understanding service used to turn
// raw OCR text into structured book records and to propose alternative
// titles when a bibliographic search comes up empty.
package llm

import "context"

// RawBook is one book entry as returned by the model, before
// normalization. Fields mirror the JSON schema in the prompt.
type RawBook struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ReadingStatus string `json:"reading_status"`
	DateStarted   string `json:"date_started,omitempty"`
	DateFinished  string `json:"date_finished,omitempty"`
}

// Analysis is the parsed result of one text-block analysis.
type Analysis struct {
	Books       []RawBook `json:"books"`
	Confidence  float64   `json:"confidence"`
	RawResponse string    `json:"-"`
}

// LanguageService defines the language-understanding operations the
// pipeline depends on. Implementations must tolerate being asked for
// strict JSON and callers must strip markdown code fencing before
// parsing replies.
type LanguageService interface {
	// AnalyzeText interprets one OCR text block as a list of books.
	AnalyzeText(ctx context.Context, text string) (*Analysis, error)

	// GenerateTitleVariations proposes up to three alternative titles
	// for a failed search: subtitles stripped, series annotations
	// removed, leading articles dropped.
	GenerateTitleVariations(ctx context.Context, title, author string) ([]string, error)
}
