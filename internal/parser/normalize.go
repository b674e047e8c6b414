package parser

import (
	"strings"

	"fable2md/internal/llm"
	"fable2md/pkg/models"
)

// normalizeRecord converts a raw model reply into a BookRecord.
// Returns false when the record has no usable title and must be
// discarded before search or enrichment.
func normalizeRecord(raw llm.RawBook) (models.BookRecord, bool) {
	title := strings.TrimSpace(raw.Title)
	author := strings.TrimSpace(raw.Author)

	if title == "" {
		return models.BookRecord{}, false
	}

	// OCR sometimes collapses the title and author lines into one;
	// recover the "<title> by <author>" shape before giving up.
	if author == "" {
		title, author = splitTitleByAuthor(title)
	}
	if author == "" {
		author = models.StatusUnknown
	} else {
		author = models.PrimaryAuthor(author)
	}

	status := strings.TrimSpace(raw.ReadingStatus)
	if !models.ValidStatus(status) {
		status = models.StatusUnknown
	}

	return models.BookRecord{
		Title:         title,
		Author:        author,
		ReadingStatus: status,
		DateStarted:   strings.TrimSpace(raw.DateStarted),
		DateFinished:  strings.TrimSpace(raw.DateFinished),
	}, true
}

// splitTitleByAuthor splits "The Martian by Andy Weir" into its parts.
// The last " by " wins so titles containing "by" stay intact.
func splitTitleByAuthor(title string) (string, string) {
	idx := strings.LastIndex(strings.ToLower(title), " by ")
	if idx <= 0 {
		return title, ""
	}
	candidateTitle := strings.TrimSpace(title[:idx])
	candidateAuthor := strings.TrimSpace(title[idx+len(" by "):])
	if candidateTitle == "" || candidateAuthor == "" {
		return title, ""
	}
	return candidateTitle, candidateAuthor
}
