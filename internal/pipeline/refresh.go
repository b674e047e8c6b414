package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fable2md/internal/enrich"
	"fable2md/internal/markdown"
	"fable2md/internal/reconcile"
	"fable2md/pkg/models"
)

// RefreshResult describes what a metadata refresh changed in one note.
type RefreshResult struct {
	File     string
	Written  bool
	Reason   string
	Improved []string
}

// Refresher re-runs enrichment for notes that already exist, filling
// fields an earlier run could not resolve.
type Refresher struct {
	enricher  *enrich.Enricher
	engine    *reconcile.Engine
	generator *markdown.Generator
}

// NewRefresher creates a refresher.
func NewRefresher(enricher *enrich.Enricher) *Refresher {
	return &Refresher{
		enricher:  enricher,
		engine:    reconcile.NewEngine(),
		generator: markdown.NewGenerator(),
	}
}

// RefreshNote re-enriches the note at path. The note body and the
// date_added stamp are preserved; only front matter fields change, and
// only when the refreshed record is clearly richer. Notes carrying
// user-added front matter fields are left untouched.
func (r *Refresher) RefreshNote(ctx context.Context, path string) (*RefreshResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading note: %w", err)
	}
	content := string(data)

	note, err := reconcile.ParseNote(content)
	if err != nil {
		return nil, fmt.Errorf("parsing note %s: %w", path, err)
	}

	before := RecordFromNote(note)
	refreshed := before
	if err := r.enricher.Enrich(ctx, &refreshed); err != nil {
		return nil, err
	}

	result := &RefreshResult{
		File:     filepath.Base(path),
		Improved: improvements(before, refreshed),
	}

	decision := r.engine.Reconcile(refreshed, content)
	if !decision.Overwrite {
		result.Reason = decision.Reason
		return result, nil
	}

	head, err := r.generator.RenderFrontMatter(refreshed)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(head+"\n"+note.Body), 0o644); err != nil {
		return nil, fmt.Errorf("rewriting note: %w", err)
	}
	result.Written = true
	result.Reason = decision.Reason
	return result, nil
}

// RecordFromNote rebuilds a book record from note front matter.
func RecordFromNote(note *reconcile.Note) models.BookRecord {
	record := models.BookRecord{
		Title:         noteString(note, "title"),
		Author:        noteString(note, "author"),
		ReadingStatus: noteString(note, "reading_status"),
		DateStarted:   noteString(note, "date_started"),
		DateFinished:  noteString(note, "date_finished"),
		DateAdded:     noteString(note, "date_added"),
		ISBN13:        noteString(note, "isbn"),
		ISBN10:        noteString(note, "isbn_10"),
		CoverURL:      noteString(note, "cover_url"),
		Publisher:     noteString(note, "publisher"),
		OpenLibraryID: noteString(note, "open_library_id"),
	}
	if record.Author == "" {
		record.Author = models.StatusUnknown
	}
	if !models.ValidStatus(record.ReadingStatus) {
		record.ReadingStatus = models.StatusUnknown
	}
	record.PublishYear = noteInt(note, "publish_year")
	record.Pages = noteInt(note, "pages")
	return record
}

func noteString(note *reconcile.Note, key string) string {
	v, ok := note.Fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func noteInt(note *reconcile.Note, key string) int {
	v, ok := note.Fields[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	}
	return 0
}

// improvements lists front matter fields the refresh filled or changed.
func improvements(before, after models.BookRecord) []string {
	var changed []string
	compare := []struct {
		key      string
		old, new string
	}{
		{"isbn", before.ISBN13, after.ISBN13},
		{"isbn_10", before.ISBN10, after.ISBN10},
		{"cover_url", before.CoverURL, after.CoverURL},
		{"publisher", before.Publisher, after.Publisher},
		{"publish_year", strconv.Itoa(before.PublishYear), strconv.Itoa(after.PublishYear)},
		{"pages", strconv.Itoa(before.Pages), strconv.Itoa(after.Pages)},
		{"open_library_id", before.OpenLibraryID, after.OpenLibraryID},
	}
	for _, c := range compare {
		if c.old != c.new && c.new != "" && c.new != "0" {
			changed = append(changed, c.key)
		}
	}
	return changed
}
