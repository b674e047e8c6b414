package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fable2md/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fable2md",
	Short: "fable2md - turn reading tracker screenshots into markdown book notes",
	Long: `fable2md reads screenshots of the Fable reading tracker, extracts the
books on them with OCR, enriches each book with Open Library metadata
and writes one markdown note per book with YAML front matter.

Notes you have edited by hand are never overwritten.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fable2md - book screenshot importer")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
