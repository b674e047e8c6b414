// Package enrich resolves parsed book records against Open Library and
// merges the bibliographic fields it finds into them.
//
// Resolution is a tiered search: an exact title+author query first,
// then up to three model-generated title variations, then one fuzzy
// free-text query. The first hit wins and terminates the chain.
package enrich

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"fable2md/internal/logger"
	"fable2md/internal/openlibrary"
	"fable2md/pkg/models"
)

// Bibliography is the slice of the Open Library client the resolver
// depends on.
type Bibliography interface {
	Search(ctx context.Context, title, author string) (*openlibrary.Match, error)
	SearchFuzzy(ctx context.Context, query string) (*openlibrary.Match, error)
	FetchEditions(ctx context.Context, workKey string) ([]openlibrary.Edition, error)
}

// VariationGenerator proposes alternative titles for a failed search.
// Satisfied by llm.LanguageService.
type VariationGenerator interface {
	GenerateTitleVariations(ctx context.Context, title, author string) ([]string, error)
}

// ProgressFunc receives human-readable progress lines, one per search
// attempt. It is a side channel only and never affects control flow.
type ProgressFunc func(msg string)

// Resolution is a successful lookup: the search match plus, when the
// edition lookup found anything, the richest edition of the work.
type Resolution struct {
	Match    *openlibrary.Match
	Edition  *openlibrary.Edition // nil when no edition detail was reachable
	Strategy string               // "exact", "variation", or "fuzzy"
}

// Resolver runs the tiered search strategy for one record at a time.
type Resolver struct {
	library    Bibliography
	variations VariationGenerator
	progress   ProgressFunc
	log        zerolog.Logger
}

// NewResolver creates a Resolver. progress may be nil.
func NewResolver(library Bibliography, variations VariationGenerator, progress ProgressFunc) *Resolver {
	return &Resolver{
		library:    library,
		variations: variations,
		progress:   progress,
		log:        logger.WithComponent("resolver"),
	}
}

// Resolve runs the search tiers for record and returns the first hit,
// or nil when every strategy is exhausted. The only error it returns
// is context cancellation; service failures degrade to "not found"
// inside the bibliography client.
func (r *Resolver) Resolve(ctx context.Context, record models.BookRecord) (*Resolution, error) {
	title := record.Title
	author := record.SearchAuthor()

	// Tier 1: exact title + author.
	r.report("Searching Open Library: %q by %q", title, author)
	match, err := r.library.Search(ctx, title, author)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return r.finish(ctx, match, "exact")
	}
	r.report("No exact match for %q", title)

	// Tier 2: model-generated title variations, first hit wins.
	variations, err := r.variations.GenerateTitleVariations(ctx, title, author)
	if err != nil {
		// The variation generator is another network service; losing it
		// skips a tier, it does not fail the record.
		r.log.Warn().Err(err).Str("title", title).Msg("Variation generation failed, skipping tier")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		variations = nil
	}
	for _, variation := range variations {
		r.report("Trying variation: %q", variation)
		match, err = r.library.Search(ctx, variation, author)
		if err != nil {
			return nil, err
		}
		if match != nil {
			r.report("Variation %q matched", variation)
			return r.finish(ctx, match, "variation")
		}
		r.report("No match for variation %q", variation)
	}

	// Tier 3: one combined free-text query.
	query := title
	if author != "" {
		query = title + " " + author
	}
	r.report("Trying fuzzy search: %q", query)
	match, err = r.library.SearchFuzzy(ctx, query)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return r.finish(ctx, match, "fuzzy")
	}

	r.report("All search strategies exhausted for %q", title)
	return nil, nil
}

// finish runs the secondary edition lookup and assembles the Resolution.
func (r *Resolver) finish(ctx context.Context, match *openlibrary.Match, strategy string) (*Resolution, error) {
	res := &Resolution{Match: match, Strategy: strategy}

	if match.WorkKey != "" {
		editions, err := r.library.FetchEditions(ctx, match.WorkKey)
		if err != nil {
			return nil, err
		}
		if best := richestEdition(editions); best != nil {
			res.Edition = best
		}
	}

	r.log.Info().
		Str("strategy", strategy).
		Str("work", match.WorkKey).
		Bool("edition_detail", res.Edition != nil).
		Msg("Record resolved")

	return res, nil
}

func (r *Resolver) report(format string, args ...interface{}) {
	if r.progress != nil {
		r.progress(fmt.Sprintf(format, args...))
	}
}

// Edition field weights. ISBNs dominate because everything else (cover,
// bookmark links) derives from them.
const (
	weightISBN13      = 4
	weightISBN10      = 3
	weightPublisher   = 2
	weightPages       = 2
	weightPublishDate = 1
)

// richestEdition picks the edition with the best field coverage, or nil
// when no edition scores above zero.
func richestEdition(editions []openlibrary.Edition) *openlibrary.Edition {
	var best *openlibrary.Edition
	bestScore := 0

	for i := range editions {
		score := editionScore(editions[i])
		if score > bestScore {
			best = &editions[i]
			bestScore = score
		}
	}
	return best
}

func editionScore(e openlibrary.Edition) int {
	score := 0
	if len(e.ISBN13) > 0 {
		score += weightISBN13
	}
	if len(e.ISBN10) > 0 {
		score += weightISBN10
	}
	if len(e.Publishers) > 0 {
		score += weightPublisher
	}
	if e.NumberOfPages > 0 {
		score += weightPages
	}
	if e.PublishDate != "" {
		score += weightPublishDate
	}
	return score
}
