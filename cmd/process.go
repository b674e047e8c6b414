package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fable2md/internal/config"
	"fable2md/internal/logger"
)

var processCmd = &cobra.Command{
	Use:   "process [screenshot...]",
	Short: "Extract books from screenshots and write markdown notes",
	Long: `Process one or more reading tracker screenshots end to end.

Each screenshot is sliced into bands, run through OCR, parsed into book
records with the OpenAI API, enriched with Open Library metadata and
written as one markdown note per book into the output directory.

Existing notes are only replaced when the new metadata is clearly
richer; notes with hand-added front matter fields are never touched.

Required environment variables:
  OPENAI_API_KEY - OpenAI API key for record parsing and title variations`,
	Example: `  # Import a single screenshot
  fable2md process shelf.png

  # Import several screenshots into a custom directory
  fable2md process shelf1.png shelf2.png -o ./books

  # Use the Google Vision OCR backend
  OCR_BACKEND=vision fable2md process shelf.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("output", "o", "", "Notes output directory (default: OUTPUT_DIR or ./output)")
	processCmd.Flags().Int("timeout", 600, "Processing timeout in seconds")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	outputDir, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("screenshot not found: %s", path)
		}
	}

	log.Info().
		Int("screenshots", len(args)).
		Str("output", cfg.OutputDir).
		Str("ocr_backend", cfg.OCRBackend).
		Msg("Starting screenshot import")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	p, err := createPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, args)
	if report != nil {
		fmt.Printf("\nProcessed %d screenshot(s): %d book(s) found, %d note(s) written, %d kept as-is\n",
			report.Screenshots, report.BooksFound, report.NotesWritten, report.NotesSkipped)
		if report.EnrichmentFailures > 0 {
			fmt.Printf("%d book(s) could not be enriched\n", report.EnrichmentFailures)
		}
		if report.BookmarksSaved > 0 {
			fmt.Printf("%d bookmark(s) saved to Raindrop\n", report.BookmarksSaved)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("Import did not complete")
		return fmt.Errorf("import did not complete: %w", err)
	}

	log.Info().
		Int("books", report.BooksFound).
		Int("written", report.NotesWritten).
		Msg("Import completed")
	return nil
}
