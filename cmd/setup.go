package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"fable2md/internal/config"
	"fable2md/internal/enrich"
	"fable2md/internal/llm"
	"fable2md/internal/ocr"
	"fable2md/internal/openlibrary"
	"fable2md/internal/parser"
	"fable2md/internal/pipeline"
	"fable2md/internal/raindrop"
	"fable2md/internal/screenshot"
	"fable2md/internal/vault"
)

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// createOCRService picks the configured OCR backend.
func createOCRService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ocr.Service, error) {
	if cfg.OCRBackend == "vision" {
		service, err := ocr.NewGoogleVisionService(ctx)
		if err != nil {
			if errors.Is(err, ocr.ErrMissingCredentials) {
				log.Error().Err(err).Msg("Google Cloud credentials not configured")
				return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n"+
					"1. GOOGLE_APPLICATION_CREDENTIALS with the path to a service account JSON file\n"+
					"2. GOOGLE_CREDENTIALS with inline JSON credentials\n\n"+
					"Original error: %w", err)
			}
			return nil, fmt.Errorf("failed to create Vision OCR service: %w", err)
		}
		log.Debug().Msg("Using Google Vision OCR backend")
		return service, nil
	}

	log.Debug().Str("language", cfg.OCRLanguage).Msg("Using Tesseract OCR backend")
	return ocr.NewTesseractService(cfg.OCRLanguage), nil
}

// createEnricher wires the LLM service, the Open Library client and the
// resolver together. Progress lines go to stdout so a long run shows
// which book is being looked up.
func createEnricher(cfg *config.Config, language llm.LanguageService) *enrich.Enricher {
	library := openlibrary.NewClient(openlibrary.ClientConfig{
		UserAgent:   cfg.UserAgent,
		MinInterval: cfg.SearchMinInterval,
		MaxRetries:  cfg.SearchMaxRetries,
		BackoffBase: cfg.SearchBackoffBase,
		Timeout:     cfg.SearchTimeout,
	})
	progress := func(line string) {
		fmt.Println(line)
	}
	resolver := enrich.NewResolver(library, language, progress)
	return enrich.NewEnricher(resolver)
}

// createLanguageService builds the OpenAI-backed LLM service.
func createLanguageService(cfg *config.Config) llm.LanguageService {
	client := openai.NewClient(cfg.OpenAIAPIKey)
	return llm.NewOpenAIService(client, llm.OpenAIConfig{
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		MaxAttempts: cfg.LLMMaxAttempts,
	})
}

// createPipeline assembles the full screenshot import pipeline.
func createPipeline(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Pipeline, error) {
	extractor, err := createOCRService(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	language := createLanguageService(cfg)

	opts := pipeline.Options{}
	if cfg.RaindropEnabled() {
		opts.Bookmarker = raindrop.NewClient(raindrop.Config{
			Token:        cfg.RaindropToken,
			CollectionID: cfg.RaindropCollectionID,
			Tags:         splitTags(cfg.RaindropTags),
		})
		log.Debug().Msg("Raindrop sync enabled")
	}
	if cfg.ObsidianEnabled() {
		sync, err := vault.NewSync(cfg.ObsidianVaultPath)
		if err != nil {
			return nil, err
		}
		opts.Copier = sync
		log.Debug().Str("vault", cfg.ObsidianVaultPath).Msg("Obsidian sync enabled")
	}

	return pipeline.New(
		screenshot.NewPreparer(cfg.BandHeightPx),
		extractor,
		parser.New(language),
		createEnricher(cfg, language),
		cfg.OutputDir,
		opts,
	), nil
}

func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
