// Package markdown renders book records as Obsidian-friendly notes
// with YAML front matter.
package markdown

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fable2md/pkg/models"
)

// frontMatter mirrors the keys a generated note carries, in the order
// they are written.
type frontMatter struct {
	Title         string `yaml:"title"`
	Author        string `yaml:"author"`
	ISBN          string `yaml:"isbn,omitempty"`
	ISBN10        string `yaml:"isbn_10,omitempty"`
	CoverURL      string `yaml:"cover_url,omitempty"`
	ReadingStatus string `yaml:"reading_status"`
	DateAdded     string `yaml:"date_added"`
	DateStarted   string `yaml:"date_started,omitempty"`
	DateFinished  string `yaml:"date_finished,omitempty"`
	Source        string `yaml:"source,omitempty"`
	Publisher     string `yaml:"publisher,omitempty"`
	PublishYear   int    `yaml:"publish_year,omitempty"`
	Pages         int    `yaml:"pages,omitempty"`
	OpenLibraryID string `yaml:"open_library_id,omitempty"`
}

// Generator renders records into markdown notes.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a generator using the wall clock for the
// date_added field.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Render produces the full markdown content for a record, with the
// default note body.
func (g *Generator) Render(record models.BookRecord) (string, error) {
	head, err := g.RenderFrontMatter(record)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n# " + record.Title + "\n\n")
	if record.CoverURL != "" {
		b.WriteString(fmt.Sprintf("![cover](%s)\n\n", record.CoverURL))
	}
	b.WriteString("## Notes\n")
	return b.String(), nil
}

// RenderFrontMatter produces only the delimited front matter block,
// for callers that preserve an existing note body.
func (g *Generator) RenderFrontMatter(record models.BookRecord) (string, error) {
	fm := frontMatter{
		Title:         record.Title,
		Author:        record.Author,
		ISBN:          record.ISBN13,
		ISBN10:        record.ISBN10,
		CoverURL:      record.CoverURL,
		ReadingStatus: record.ReadingStatus,
		DateAdded:     record.DateAdded,
		DateStarted:   record.DateStarted,
		DateFinished:  record.DateFinished,
		Source:        record.MetadataSource,
		Publisher:     record.Publisher,
		PublishYear:   record.PublishYear,
		Pages:         record.Pages,
		OpenLibraryID: record.OpenLibraryID,
	}
	if fm.ReadingStatus == "" {
		fm.ReadingStatus = models.StatusUnknown
	}
	if fm.DateAdded == "" {
		fm.DateAdded = g.now().Format("2006-01-02")
	}

	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	return b.String(), nil
}

// Filename builds the note filename for a record:
// first author initial plus last name, two dashes, camel-cased title.
func Filename(record models.BookRecord) string {
	return fmt.Sprintf("%s--%s.md", authorSlug(record.Author), titleSlug(record.Title))
}

func authorSlug(author string) string {
	author = strings.TrimSpace(author)
	if author == "" || strings.EqualFold(author, "unknown") {
		return "Unknown"
	}
	parts := strings.Fields(author)
	if len(parts) == 1 {
		return capitalize(parts[0])
	}
	first := strings.ToUpper(parts[0][:1])
	return first + capitalize(parts[len(parts)-1])
}

func titleSlug(title string) string {
	title = strings.ReplaceAll(title, "-", " ")
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "'s", "s")

	var b strings.Builder
	for _, word := range strings.Fields(title) {
		cleaned := stripPunctuation(word)
		if cleaned == "" {
			continue
		}
		b.WriteString(capitalize(cleaned))
	}
	if b.Len() == 0 {
		return "Untitled"
	}
	return b.String()
}

func stripPunctuation(word string) string {
	var b strings.Builder
	for _, r := range word {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
