package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fable2md/pkg/models"
)

func note(front string) string {
	return "---\n" + front + "---\n\n# Body\n"
}

var richRecord = models.BookRecord{
	Title:         "Project Hail Mary",
	Author:        "Andy Weir",
	ReadingStatus: models.StatusRead,
	ISBN13:        "9780593135204",
	CoverURL:      "https://covers.openlibrary.org/b/isbn/9780593135204-L.jpg",
	Publisher:     "Ballantine Books",
	PublishYear:   2021,
	Pages:         476,
	OpenLibraryID: "OL28257970M",
}

func TestReconcileNoExistingNote(t *testing.T) {
	d := NewEngine().Reconcile(models.BookRecord{Title: "Anything"}, "")
	assert.True(t, d.Overwrite)
}

func TestReconcileMalformedFrontMatterIsRewritten(t *testing.T) {
	d := NewEngine().Reconcile(richRecord, "just some text without front matter")
	assert.True(t, d.Overwrite)

	d = NewEngine().Reconcile(richRecord, "---\n\t:::not yaml\n---\n")
	assert.True(t, d.Overwrite)
}

func TestReconcileUserFieldsAreInviolable(t *testing.T) {
	// A minimal note with a personal rating must survive even a much
	// richer candidate.
	existing := note("title: Project Hail Mary\nauthor: Andy Weir\nmy_rating: 5\n")
	d := NewEngine().Reconcile(richRecord, existing)
	assert.False(t, d.Overwrite)
	assert.Contains(t, d.Reason, "my_rating")
}

func TestReconcileRequiresClearWin(t *testing.T) {
	// Existing: title + author + status = 3 points.
	existing := note("title: Project Hail Mary\nauthor: Andy Weir\nreading_status: read\n")

	// Candidate with the same basics plus one important field: 6 points.
	// 6 > 3+2 so it wins.
	candidate := models.BookRecord{
		Title:         "Project Hail Mary",
		Author:        "Andy Weir",
		ReadingStatus: models.StatusRead,
		ISBN13:        "9780593135204",
	}
	d := NewEngine().Reconcile(candidate, existing)
	assert.True(t, d.Overwrite)
	assert.Equal(t, 6, d.CandidateScore)
	assert.Equal(t, 3, d.ExistingScore)
}

func TestReconcileMarginalGainIsNotEnough(t *testing.T) {
	// Existing: basics + isbn = 6 points. Candidate: basics + isbn +
	// publisher would be 9... but here candidate only adds pages worth
	// nothing beyond the margin: basics(3) + isbn(3) = 6 vs 6, kept.
	existing := note("title: Dune\nauthor: Frank Herbert\nreading_status: read\nisbn: \"9780441172719\"\n")
	candidate := models.BookRecord{
		Title:         "Dune",
		Author:        "Frank Herbert",
		ReadingStatus: models.StatusRead,
		ISBN13:        "9780441172719",
	}
	d := NewEngine().Reconcile(candidate, existing)
	assert.False(t, d.Overwrite)

	// One extra important field is a 3 point lead, just over the margin.
	candidate.Publisher = "Ace"
	d = NewEngine().Reconcile(candidate, existing)
	assert.True(t, d.Overwrite)
	assert.Equal(t, 9, d.CandidateScore)
	assert.Equal(t, 6, d.ExistingScore)
}

func TestReconcileExactMarginIsKept(t *testing.T) {
	// A lead of exactly the margin must not overwrite: 3 vs 1.
	existing := note("title: Dune\n")
	candidate := models.BookRecord{
		Title:         "Dune",
		Author:        "Frank Herbert",
		ReadingStatus: models.StatusRead,
	}
	d := NewEngine().Reconcile(candidate, existing)
	assert.False(t, d.Overwrite)
	assert.Equal(t, 3, d.CandidateScore)
	assert.Equal(t, 1, d.ExistingScore)

	// One important field pushes the lead past the margin: 6 vs 1.
	candidate.Pages = 412
	d = NewEngine().Reconcile(candidate, existing)
	assert.True(t, d.Overwrite)
}

func TestReconcileIdempotent(t *testing.T) {
	// Re-running the same candidate against the note it just produced
	// must not flap: equal scores never overwrite.
	existing := note("title: Project Hail Mary\nauthor: Andy Weir\nreading_status: read\n" +
		"isbn: \"9780593135204\"\ncover_url: https://covers.openlibrary.org/b/isbn/9780593135204-L.jpg\n" +
		"publisher: Ballantine Books\npublish_year: 2021\npages: 476\nopen_library_id: OL28257970M\n" +
		"date_added: 2026-08-29\nsource: Open Library\n")
	d := NewEngine().Reconcile(richRecord, existing)
	assert.False(t, d.Overwrite)
	assert.Equal(t, d.CandidateScore, d.ExistingScore)
}

func TestReconcileUnknownStatusScoresNothing(t *testing.T) {
	existing := note("title: Dune\nauthor: Frank Herbert\nreading_status: unknown\n")
	candidate := models.BookRecord{Title: "Dune", Author: "Frank Herbert", ReadingStatus: models.StatusUnknown}
	d := NewEngine().Reconcile(candidate, existing)
	assert.Equal(t, 2, d.CandidateScore)
	assert.Equal(t, 2, d.ExistingScore)
	assert.False(t, d.Overwrite)
}

func TestParseNote(t *testing.T) {
	n, err := ParseNote("---\ntitle: Dune\npages: 412\n---\n\n# Dune\nnotes here\n")
	require.NoError(t, err)
	assert.Equal(t, "Dune", n.stringField("title"))
	assert.Equal(t, "412", n.stringField("pages"))
	assert.Contains(t, n.Body, "# Dune")
}

func TestParseNoteErrors(t *testing.T) {
	_, err := ParseNote("no front matter")
	assert.ErrorIs(t, err, ErrNoFrontMatter)

	_, err = ParseNote("---\ntitle: Dune\n")
	assert.ErrorIs(t, err, ErrMalformedFrontMatter)

	_, err = ParseNote("---\n\t: bad\n---\n")
	assert.ErrorIs(t, err, ErrMalformedFrontMatter)
}
