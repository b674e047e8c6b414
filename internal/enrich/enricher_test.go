package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fable2md/internal/openlibrary"
	"fable2md/pkg/models"
)

func newEnricherWith(library *fakeLibrary) *Enricher {
	return NewEnricher(NewResolver(library, &fakeVariations{}, nil))
}

func TestEnrichMergesEditionFields(t *testing.T) {
	library := &fakeLibrary{
		matches: map[string]*openlibrary.Match{
			"Project Hail Mary": {
				WorkKey:          "/works/OL17091839W",
				Title:            "Project Hail Mary",
				Authors:          []string{"Andy Weir"},
				FirstPublishYear: 2021,
				Publishers:       []string{"Some Other Pub"},
			},
		},
		editions: map[string][]openlibrary.Edition{
			"/works/OL17091839W": {{
				Key:           "/books/OL28257970M",
				ISBN13:        []string{"9780593135204"},
				ISBN10:        []string{"0593135202"},
				Publishers:    []string{"Ballantine Books"},
				PublishDate:   "May 4, 2021",
				NumberOfPages: 476,
			}},
		},
	}

	record := models.BookRecord{Title: "Project Hail Mary", Author: "Andy Weir", ReadingStatus: models.StatusRead}
	require.NoError(t, newEnricherWith(library).Enrich(context.Background(), &record))

	assert.Equal(t, models.SourceOpenLibrary, record.MetadataSource)
	assert.Equal(t, "9780593135204", record.ISBN13)
	assert.Equal(t, "0593135202", record.ISBN10)
	assert.Equal(t, "Ballantine Books", record.Publisher)
	assert.Equal(t, 2021, record.PublishYear)
	assert.Equal(t, 476, record.Pages)
	assert.Equal(t, "OL28257970M", record.OpenLibraryID)
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/9780593135204-L.jpg", record.CoverURL)
}

func TestEnrichFallsBackToMatchFields(t *testing.T) {
	library := &fakeLibrary{
		matches: map[string]*openlibrary.Match{
			"Old Tome": {
				WorkKey:          "/works/OL5W",
				Title:            "Old Tome",
				FirstPublishYear: 1911,
				Publishers:       []string{"Antique Press"},
				ISBNs:            []string{"0-14-044913-1"},
				CoverID:          777,
			},
		},
	}

	record := models.BookRecord{Title: "Old Tome", Author: "unknown"}
	require.NoError(t, newEnricherWith(library).Enrich(context.Background(), &record))

	assert.Equal(t, "0140449131", record.ISBN10)
	assert.Empty(t, record.ISBN13)
	assert.Equal(t, "Antique Press", record.Publisher)
	assert.Equal(t, 1911, record.PublishYear)
	assert.Equal(t, "OL5W", record.OpenLibraryID)
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/0140449131-L.jpg", record.CoverURL)
}

func TestEnrichCoverIDFallback(t *testing.T) {
	library := &fakeLibrary{
		matches: map[string]*openlibrary.Match{
			"No ISBN Anywhere": {WorkKey: "/works/OL6W", Title: "No ISBN Anywhere", CoverID: 424242},
		},
	}

	record := models.BookRecord{Title: "No ISBN Anywhere"}
	require.NoError(t, newEnricherWith(library).Enrich(context.Background(), &record))

	assert.Equal(t, "https://covers.openlibrary.org/b/id/424242-L.jpg", record.CoverURL)
}

func TestEnrichRestoresTruncatedTitle(t *testing.T) {
	library := &fakeLibrary{
		matches: map[string]*openlibrary.Match{
			"The Hitchhiker's Guide to the...": {
				WorkKey: "/works/OL7W",
				Title:   "The Hitchhiker's Guide to the Galaxy",
			},
		},
	}

	record := models.BookRecord{Title: "The Hitchhiker's Guide to the..."}
	require.NoError(t, newEnricherWith(library).Enrich(context.Background(), &record))
	assert.Equal(t, "The Hitchhiker's Guide to the Galaxy", record.Title)
}

func TestEnrichNoMatchKeepsExtractedData(t *testing.T) {
	record := models.BookRecord{Title: "Self Published Zine", Author: "A. Nobody", ReadingStatus: models.StatusRead}
	require.NoError(t, newEnricherWith(&fakeLibrary{}).Enrich(context.Background(), &record))

	assert.Equal(t, models.SourceNoMatch, record.MetadataSource)
	assert.Equal(t, "Self Published Zine", record.Title)
	assert.Equal(t, "A. Nobody", record.Author)
	assert.Empty(t, record.ISBN13)
}

func TestEnrichSkipsTitlelessRecords(t *testing.T) {
	record := models.BookRecord{Author: "Someone"}
	require.NoError(t, newEnricherWith(&fakeLibrary{}).Enrich(context.Background(), &record))
	assert.Equal(t, "Skipped: missing title", record.MetadataSource)
}

func TestYearFrom(t *testing.T) {
	assert.Equal(t, 2010, yearFrom("Aug 01, 2010"))
	assert.Equal(t, 1990, yearFrom("1990"))
	assert.Equal(t, 2021, yearFrom("May 4, 2021"))
	assert.Equal(t, 0, yearFrom("unknown"))
	assert.Equal(t, 0, yearFrom(""))
	assert.Equal(t, 0, yearFrom("123"))
}
