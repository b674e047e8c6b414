package openlibrary

import "fmt"

// searchResponse matches search.json
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
	EditionCount     int      `json:"edition_count"`
}

// Match is the first search hit for a book, carrying the coarse
// work-level fields a search result exposes.
type Match struct {
	WorkKey          string   // "/works/OL27448W"
	Title            string   // catalog title, often more complete than the screenshot's
	Authors          []string // catalog author names
	FirstPublishYear int
	Publishers       []string
	ISBNs            []string // mixed ISBN-10/13 as the search index returns them
	CoverID          int      // internal numeric cover identifier, 0 when absent
	EditionCount     int
}

func matchFromDoc(doc searchDoc) *Match {
	return &Match{
		WorkKey:          doc.Key,
		Title:            doc.Title,
		Authors:          doc.AuthorName,
		FirstPublishYear: doc.FirstPublishYear,
		Publishers:       doc.Publisher,
		ISBNs:            doc.ISBN,
		CoverID:          doc.CoverI,
		EditionCount:     doc.EditionCount,
	}
}

// editionsResponse matches works/{id}/editions.json
type editionsResponse struct {
	Entries []Edition `json:"entries"`
}

// Edition is one edition-level record of a work.
type Edition struct {
	Key           string   `json:"key"` // "/books/OL7353617M"
	ISBN13        []string `json:"isbn_13"`
	ISBN10        []string `json:"isbn_10"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	NumberOfPages int      `json:"number_of_pages"`
}

// EditionID returns the bare Open Library edition identifier.
func (e Edition) EditionID() string {
	const prefix = "/books/"
	if len(e.Key) > len(prefix) && e.Key[:len(prefix)] == prefix {
		return e.Key[len(prefix):]
	}
	return e.Key
}

// CoverURLForISBN builds a large cover image URL from an ISBN.
func CoverURLForISBN(isbn string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn)
}

// CoverURLForID builds a large cover image URL from the internal
// numeric cover identifier.
func CoverURLForID(id int) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", id)
}
