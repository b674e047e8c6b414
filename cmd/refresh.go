package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fable2md/internal/config"
	"fable2md/internal/logger"
	"fable2md/internal/pipeline"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [note-file...]",
	Short: "Re-run Open Library enrichment for existing notes",
	Long: `Re-query Open Library for notes that already exist, filling metadata
an earlier run could not resolve (missing ISBNs, covers, publishers).

With no arguments every note in the output directory is refreshed.
The note body and the date_added stamp are preserved; notes with
hand-added front matter fields are never touched.`,
	Example: `  # Refresh every note in the output directory
  fable2md refresh

  # Refresh a single note
  fable2md refresh notes/AWeir--ProjectHailMary.md`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().Int("timeout", 600, "Processing timeout in seconds")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("refresh")

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	notes := args
	if len(notes) == 0 {
		notes, err = listNotes(cfg.OutputDir)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("No notes found to refresh.")
			return nil
		}
	}

	log.Info().Int("notes", len(notes)).Msg("Starting metadata refresh")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	language := createLanguageService(cfg)
	refresher := pipeline.NewRefresher(createEnricher(cfg, language))

	updated := 0
	for _, path := range notes {
		result, err := refresher.RefreshNote(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("file", path).Msg("Refresh failed for note")
			continue
		}
		if result.Written {
			updated++
			fmt.Printf("updated  %s (%s)\n", result.File, strings.Join(result.Improved, ", "))
		} else {
			fmt.Printf("kept     %s: %s\n", result.File, result.Reason)
		}
	}

	fmt.Printf("\nRefreshed %d of %d note(s)\n", updated, len(notes))
	log.Info().Int("updated", updated).Int("total", len(notes)).Msg("Refresh completed")
	return nil
}

func listNotes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading notes directory %s: %w", dir, err)
	}
	var notes []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			notes = append(notes, filepath.Join(dir, entry.Name()))
		}
	}
	return notes, nil
}
