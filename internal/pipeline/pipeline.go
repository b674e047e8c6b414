// Package pipeline wires the screenshot-to-note flow together:
// prepare bands, run OCR, parse records, enrich from Open Library,
// reconcile against existing notes and write the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"fable2md/internal/enrich"
	"fable2md/internal/logger"
	"fable2md/internal/markdown"
	"fable2md/internal/ocr"
	"fable2md/internal/parser"
	"fable2md/internal/raindrop"
	"fable2md/internal/reconcile"
	"fable2md/internal/screenshot"
	"fable2md/internal/vault"
	"fable2md/pkg/models"
)

// Bookmarker saves finished books to an external bookmark service.
type Bookmarker interface {
	SaveBook(ctx context.Context, record models.BookRecord) (int64, error)
}

// NoteCopier mirrors written notes into a second location.
type NoteCopier interface {
	CopyNote(filename, content string) error
}

// Report summarizes one pipeline run.
type Report struct {
	Screenshots        int
	BandsProcessed     int
	BooksFound         int
	NotesWritten       int
	NotesSkipped       int
	EnrichmentFailures int
	BookmarksSaved     int
}

// Pipeline runs the full screenshot import flow.
type Pipeline struct {
	preparer  *screenshot.Preparer
	extractor ocr.Service
	parser    *parser.Parser
	enricher  *enrich.Enricher
	engine    *reconcile.Engine
	generator *markdown.Generator
	outputDir string

	bookmarker Bookmarker
	copier     NoteCopier

	log zerolog.Logger
}

// Options carries the optional pipeline integrations.
type Options struct {
	Bookmarker Bookmarker
	Copier     NoteCopier
}

// New assembles a pipeline from its stages.
func New(
	preparer *screenshot.Preparer,
	extractor ocr.Service,
	bookParser *parser.Parser,
	enricher *enrich.Enricher,
	outputDir string,
	opts Options,
) *Pipeline {
	return &Pipeline{
		preparer:   preparer,
		extractor:  extractor,
		parser:     bookParser,
		enricher:   enricher,
		engine:     reconcile.NewEngine(),
		generator:  markdown.NewGenerator(),
		outputDir:  outputDir,
		bookmarker: opts.Bookmarker,
		copier:     opts.Copier,
		log:        logger.WithComponent("pipeline"),
	}
}

// Run processes each screenshot in order and returns an aggregate
// report. A screenshot that fails to load is logged and skipped; the
// run only aborts when the context is canceled.
func (p *Pipeline) Run(ctx context.Context, screenshots []string) (*Report, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	report := &Report{}
	for _, path := range screenshots {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Screenshots++
		if err := p.processScreenshot(ctx, path, report); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			p.log.Error().Err(err).Str("screenshot", path).Msg("Screenshot failed, continuing")
		}
	}
	return report, nil
}

func (p *Pipeline) processScreenshot(ctx context.Context, path string, report *Report) error {
	bands, err := p.preparer.Prepare(ctx, path)
	if err != nil {
		return fmt.Errorf("preparing screenshot: %w", err)
	}
	defer screenshot.Cleanup(bands)

	blocks := make([]string, 0, len(bands))
	for _, band := range bands {
		result, err := p.extractor.ExtractTextWithMetadata(ctx, band.Path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.log.Warn().Err(err).Int("band", band.Index).Msg("OCR failed for band, skipping it")
			continue
		}
		report.BandsProcessed++
		if strings.TrimSpace(result.Text) == "" {
			continue
		}
		p.log.Debug().Int("band", band.Index).Int("lines", result.LineCount).
			Float64("confidence", result.Confidence).Msg("Extracted band text")
		blocks = append(blocks, result.Text)
	}

	records := p.parser.ParseBlocks(ctx, blocks)
	report.BooksFound += len(records)
	p.log.Info().Str("screenshot", path).Int("books", len(records)).Msg("Parsed book records")

	for i := range records {
		if err := p.processRecord(ctx, &records[i], report); err != nil {
			return err
		}
	}
	return nil
}

// processRecord enriches and writes a single record. Enrichment
// failures are recorded on the book and never abort the run.
func (p *Pipeline) processRecord(ctx context.Context, record *models.BookRecord, report *Report) error {
	if err := p.enricher.Enrich(ctx, record); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.log.Warn().Err(err).Str("title", record.Title).Msg("Enrichment failed")
		record.MetadataSource = models.SourceEnrichmentFailed
		report.EnrichmentFailures++
	}

	written, err := p.writeNote(*record)
	if err != nil {
		p.log.Error().Err(err).Str("title", record.Title).Msg("Could not write note")
		return nil
	}
	if !written {
		report.NotesSkipped++
		return nil
	}
	report.NotesWritten++

	if p.bookmarker != nil && record.ReadingStatus == models.StatusRead {
		if _, err := p.bookmarker.SaveBook(ctx, *record); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.log.Warn().Err(err).Str("title", record.Title).Msg("Bookmark save failed")
		} else {
			report.BookmarksSaved++
		}
	}
	return nil
}

// writeNote renders the record, reconciles it against any existing
// note and writes it when the reconciliation allows.
func (p *Pipeline) writeNote(record models.BookRecord) (bool, error) {
	filename := markdown.Filename(record)
	target := filepath.Join(p.outputDir, filename)

	existing := ""
	if data, err := os.ReadFile(target); err == nil {
		existing = string(data)
	}

	decision := p.engine.Reconcile(record, existing)
	if !decision.Overwrite {
		p.log.Info().Str("file", filename).Str("reason", decision.Reason).
			Msg("Keeping existing note")
		return false, nil
	}

	content, err := p.generator.Render(record)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing note: %w", err)
	}
	p.log.Info().Str("file", filename).Str("reason", decision.Reason).Msg("Wrote note")

	if p.copier != nil {
		if err := p.copier.CopyNote(filename, content); err != nil {
			p.log.Warn().Err(err).Str("file", filename).Msg("Vault copy failed")
		}
	}
	return true, nil
}

var _ Bookmarker = (*raindrop.Client)(nil)

var _ NoteCopier = (*vault.Sync)(nil)
