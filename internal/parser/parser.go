// Package parser turns OCR text blocks into normalized book records
// using the language service. Each block is the natural unit of retry
// and of failure: a block whose analysis fails contributes zero records
// and never aborts the rest of the batch.
package parser

import (
	"context"

	"github.com/rs/zerolog"

	"fable2md/internal/llm"
	"fable2md/internal/logger"
	"fable2md/pkg/models"
)

// Parser converts text blocks into BookRecords.
type Parser struct {
	language llm.LanguageService
	log      zerolog.Logger
}

// New creates a Parser backed by the given language service.
func New(language llm.LanguageService) *Parser {
	return &Parser{
		language: language,
		log:      logger.WithComponent("parser"),
	}
}

// ParseBlocks analyzes each text block independently and concatenates
// the resulting records in block order. No cross-block de-duplication
// is performed: a book entry split across a band boundary may appear
// twice or partially, which is a known limitation of banded OCR.
func (p *Parser) ParseBlocks(ctx context.Context, blocks []string) []models.BookRecord {
	var records []models.BookRecord

	for i, block := range blocks {
		if block == "" {
			continue
		}

		analysis, err := p.language.AnalyzeText(ctx, block)
		if err != nil {
			p.log.Warn().
				Err(err).
				Int("block", i).
				Int("block_length", len(block)).
				Msg("Block analysis failed, skipping block")
			continue
		}

		kept := 0
		for _, raw := range analysis.Books {
			record, ok := normalizeRecord(raw)
			if !ok {
				p.log.Debug().
					Int("block", i).
					Str("author", raw.Author).
					Msg("Dropping record without title")
				continue
			}
			records = append(records, record)
			kept++
		}

		p.log.Info().
			Int("block", i).
			Int("records", kept).
			Float64("confidence", analysis.Confidence).
			Msg("Block parsed")
	}

	return records
}
