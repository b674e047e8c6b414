// Package reconcile decides whether a freshly enriched book record may
// replace an existing markdown note. Notes the user has extended with
// their own front matter fields are never overwritten, and a rewrite of
// a recognized note requires a clear win in metadata richness.
package reconcile

import (
	"github.com/rs/zerolog"

	"fable2md/internal/logger"
	"fable2md/pkg/models"
)

// Field weights for the richness comparison. Identifier and edition
// fields count more than fields OCR alone can produce.
const (
	weightImportant = 3
	weightBasic     = 1

	// overwriteMargin is the score lead a candidate needs over the
	// existing note before a rewrite is allowed.
	overwriteMargin = 2
)

var importantFields = []string{"isbn", "cover_url", "publisher", "pages", "open_library_id"}

var basicFields = []string{"title", "author", "reading_status"}

// Decision is the outcome of reconciling a candidate record against an
// existing note.
type Decision struct {
	Overwrite bool
	Reason    string

	// CandidateScore and ExistingScore are the richness scores the
	// decision was based on, for logging and reporting.
	CandidateScore int
	ExistingScore  int
}

// Engine compares candidate records with existing notes.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine() *Engine {
	return &Engine{log: logger.WithComponent("reconcile")}
}

// Reconcile decides whether candidate may overwrite the note stored as
// existingContent. Pass existingContent == "" when no note exists yet.
func (e *Engine) Reconcile(candidate models.BookRecord, existingContent string) Decision {
	if existingContent == "" {
		return Decision{Overwrite: true, Reason: "no existing note"}
	}

	note, err := ParseNote(existingContent)
	if err != nil {
		e.log.Warn().Err(err).Str("title", candidate.Title).
			Msg("Existing note has unreadable front matter, rewriting")
		return Decision{Overwrite: true, Reason: "existing note has no readable front matter"}
	}

	if key, ok := unknownKey(note); ok {
		e.log.Info().Str("title", candidate.Title).Str("field", key).
			Msg("Existing note has user-added fields, keeping it")
		return Decision{Overwrite: false, Reason: "existing note has user-added field " + key}
	}

	candidateScore := scoreCandidate(candidate)
	existingScore := scoreNote(note)

	d := Decision{
		CandidateScore: candidateScore,
		ExistingScore:  existingScore,
	}
	if candidateScore > existingScore+overwriteMargin {
		d.Overwrite = true
		d.Reason = "candidate metadata is richer"
	} else {
		d.Reason = "candidate metadata is not clearly richer"
	}

	e.log.Debug().Str("title", candidate.Title).
		Int("candidate_score", candidateScore).
		Int("existing_score", existingScore).
		Bool("overwrite", d.Overwrite).
		Msg("Reconciled against existing note")

	return d
}

// unknownKey returns the first front matter key the generator does not
// produce, if any.
func unknownKey(note *Note) (string, bool) {
	for key := range note.Fields {
		if !models.KnownFrontMatterKeys[key] {
			return key, true
		}
	}
	return "", false
}

func scoreCandidate(record models.BookRecord) int {
	present := map[string]bool{
		"isbn":            record.ISBN13 != "" || record.ISBN10 != "",
		"cover_url":       record.CoverURL != "",
		"publisher":       record.Publisher != "",
		"pages":           record.Pages > 0,
		"open_library_id": record.OpenLibraryID != "",
		"title":           record.HasTitle(),
		"author":          record.HasAuthor(),
		"reading_status":  record.ReadingStatus != "" && record.ReadingStatus != models.StatusUnknown,
	}
	return scoreFields(func(key string) bool { return present[key] })
}

func scoreNote(note *Note) int {
	return scoreFields(func(key string) bool {
		if key == "isbn" {
			return note.hasValue("isbn") || note.hasValue("isbn_10")
		}
		if key == "reading_status" {
			v := note.stringField("reading_status")
			return v != "" && v != models.StatusUnknown
		}
		if key == "author" {
			v := note.stringField("author")
			return v != "" && v != "unknown"
		}
		return note.hasValue(key)
	})
}

func scoreFields(has func(key string) bool) int {
	score := 0
	for _, key := range importantFields {
		if has(key) {
			score += weightImportant
		}
	}
	for _, key := range basicFields {
		if has(key) {
			score += weightBasic
		}
	}
	return score
}
