package enrich

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"fable2md/internal/logger"
	"fable2md/internal/openlibrary"
	"fable2md/pkg/models"
)

// Enricher applies resolver results to book records.
type Enricher struct {
	resolver *Resolver
	log      zerolog.Logger
}

// NewEnricher creates an Enricher around a resolver.
func NewEnricher(resolver *Resolver) *Enricher {
	return &Enricher{
		resolver: resolver,
		log:      logger.WithComponent("enricher"),
	}
}

// Enrich resolves the record and merges the bibliographic fields in
// place, tagging MetadataSource with the outcome. A record the catalog
// cannot resolve keeps its extracted data. The only error returned is
// context cancellation.
func (e *Enricher) Enrich(ctx context.Context, record *models.BookRecord) error {
	if !record.HasTitle() {
		record.MetadataSource = "Skipped: missing title"
		return nil
	}

	resolution, err := e.resolver.Resolve(ctx, *record)
	if err != nil {
		return err
	}
	if resolution == nil {
		record.MetadataSource = models.SourceNoMatch
		e.log.Info().Str("title", record.Title).Msg("No bibliographic match")
		return nil
	}

	applyResolution(record, resolution)
	record.MetadataSource = models.SourceOpenLibrary

	e.log.Info().
		Str("title", record.Title).
		Str("isbn", record.ISBN13).
		Str("strategy", resolution.Strategy).
		Msg("Record enriched")

	return nil
}

// applyResolution merges match and edition fields into the record.
// Edition-level data wins over the coarser search-result fields.
func applyResolution(record *models.BookRecord, res *Resolution) {
	match, edition := res.Match, res.Edition

	// Screenshots truncate long titles; the catalog title restores them.
	// A shorter catalog title never replaces what the user actually saw.
	if match.Title != "" &&
		(len(match.Title) > len(record.Title) || strings.Contains(record.Title, "...")) {
		record.Title = match.Title
	}
	if !record.HasAuthor() && len(match.Authors) > 0 {
		record.Author = match.Authors[0]
	}

	if edition != nil {
		if len(edition.ISBN13) > 0 {
			record.ISBN13 = edition.ISBN13[0]
		}
		if len(edition.ISBN10) > 0 {
			record.ISBN10 = edition.ISBN10[0]
		}
		if len(edition.Publishers) > 0 {
			record.Publisher = edition.Publishers[0]
		}
		if edition.NumberOfPages > 0 {
			record.Pages = edition.NumberOfPages
		}
		if year := yearFrom(edition.PublishDate); year > 0 {
			record.PublishYear = year
		}
		record.OpenLibraryID = edition.EditionID()
	}

	// Fall back to search-result fields for anything the edition lookup
	// did not provide.
	if record.ISBN13 == "" && record.ISBN10 == "" {
		for _, isbn := range match.ISBNs {
			normalized := models.NormalizeISBN(isbn)
			switch len(normalized) {
			case 13:
				if record.ISBN13 == "" {
					record.ISBN13 = normalized
				}
			case 10:
				if record.ISBN10 == "" {
					record.ISBN10 = normalized
				}
			}
		}
	}
	if record.Publisher == "" && len(match.Publishers) > 0 {
		record.Publisher = match.Publishers[0]
	}
	if record.PublishYear == 0 && match.FirstPublishYear > 0 {
		record.PublishYear = match.FirstPublishYear
	}
	if record.OpenLibraryID == "" {
		record.OpenLibraryID = strings.TrimPrefix(match.WorkKey, "/works/")
	}

	// Cover: an ISBN-derived URL is stable; the numeric cover id is the
	// fallback for editions the covers service has no ISBN mapping for.
	switch {
	case record.ISBN13 != "":
		record.CoverURL = openlibrary.CoverURLForISBN(record.ISBN13)
	case record.ISBN10 != "":
		record.CoverURL = openlibrary.CoverURLForISBN(record.ISBN10)
	case match.CoverID > 0:
		record.CoverURL = openlibrary.CoverURLForID(match.CoverID)
	}
}

// yearFrom extracts the first four-digit year from a free-form publish
// date like "Aug 01, 2010" or "2010".
func yearFrom(date string) int {
	digits := 0
	year := 0
	for i := 0; i <= len(date); i++ {
		if i < len(date) && date[i] >= '0' && date[i] <= '9' {
			year = year*10 + int(date[i]-'0')
			digits++
			continue
		}
		if digits == 4 && year >= 1000 {
			return year
		}
		digits, year = 0, 0
	}
	return 0
}
