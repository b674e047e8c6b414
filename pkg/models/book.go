package models

import "strings"

// Reading status values as used by the Fable app shelves.
const (
	StatusRead             = "read"
	StatusCurrentlyReading = "currently-reading"
	StatusWantToRead       = "want-to-read"
	StatusUnknown          = "unknown"
)

// Metadata provenance values set during enrichment.
const (
	SourceOpenLibrary      = "Open Library"
	SourceNoMatch          = "No match"
	SourceEnrichmentFailed = "Enrichment failed"
)

// BookRecord is one logical book extracted from a screenshot, optionally
// enriched with Open Library metadata.
type BookRecord struct {
	// Extracted from the screenshot
	Title         string // Book title (required; records without it are discarded)
	Author        string // Primary author ("unknown" when not detected)
	ReadingStatus string // One of the Status* constants

	// Free-form display dates from the tracker, when visible
	DateStarted  string
	DateFinished string

	// DateAdded is set when the note is first written and preserved on
	// refresh. Empty means "stamp with today".
	DateAdded string

	// Enrichment results (empty until the resolver finds a match)
	ISBN13        string
	ISBN10        string
	CoverURL      string
	Publisher     string
	PublishYear   int
	Pages         int
	OpenLibraryID string

	// MetadataSource records where the bibliographic fields came from,
	// or why enrichment was skipped/degraded.
	MetadataSource string
}

// authorAbsentValues are author strings treated as "no author" for search.
var authorAbsentValues = map[string]bool{
	"":        true,
	"unknown": true,
	"n/a":     true,
}

// HasTitle reports whether the record carries a usable title.
func (b *BookRecord) HasTitle() bool {
	return strings.TrimSpace(b.Title) != ""
}

// HasAuthor reports whether the record carries a usable author.
// Placeholder values like "unknown" or "n/a" count as absent so they
// never pollute a bibliographic query.
func (b *BookRecord) HasAuthor() bool {
	return !authorAbsentValues[strings.ToLower(strings.TrimSpace(b.Author))]
}

// SearchAuthor returns the author value to use in bibliographic queries:
// the primary author with translator continuations stripped, or "" when
// the author is absent.
func (b *BookRecord) SearchAuthor() string {
	if !b.HasAuthor() {
		return ""
	}
	return PrimaryAuthor(b.Author)
}

// PrimaryAuthor strips comma-separated continuations from an author
// line. Fable renders translators after the author ("Olga Tokarczuk,
// Jennifer Croft (Translator)"); only the first name is the author.
func PrimaryAuthor(author string) string {
	primary := author
	if idx := strings.Index(author, ","); idx >= 0 {
		primary = author[:idx]
	}
	primary = strings.TrimSpace(primary)
	// Guard against the parenthetical landing on the primary segment.
	if idx := strings.Index(primary, "(Translator"); idx >= 0 {
		primary = strings.TrimSpace(primary[:idx])
	}
	return primary
}

// ValidStatus reports whether s is one of the recognized reading statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusRead, StatusCurrentlyReading, StatusWantToRead, StatusUnknown:
		return true
	}
	return false
}

// KnownFrontMatterKeys is the full vocabulary of front-matter keys the
// generator emits. Any other key found in an existing note was added by
// the user and makes the note ineligible for overwrite.
var KnownFrontMatterKeys = map[string]bool{
	"title":           true,
	"author":          true,
	"isbn":            true,
	"isbn_10":         true,
	"cover_url":       true,
	"reading_status":  true,
	"date_added":      true,
	"date_started":    true,
	"date_finished":   true,
	"source":          true,
	"publisher":       true,
	"publish_year":    true,
	"pages":           true,
	"open_library_id": true,
}
