package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fable2md/internal/config"
	"fable2md/internal/logger"
	"fable2md/internal/pipeline"
)

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Align note filenames with the author--title naming scheme",
	Long: `Scan the output directory and rename notes whose filename does not
match their front matter, using the same FirstInitialLastName--Title
scheme new notes get.

Without --execute the command only prints what would be renamed.`,
	Example: `  # Show pending renames
  fable2md rename

  # Apply them
  fable2md rename --execute`,
	Args: cobra.NoArgs,
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)

	renameCmd.Flags().Bool("execute", false, "Apply the renames instead of just listing them")
}

func runRename(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rename")

	execute, _ := cmd.Flags().GetBool("execute")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	renamer := pipeline.NewRenamer(cfg.OutputDir)
	plan, err := renamer.Plan()
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		fmt.Println("All note filenames already match their front matter.")
		return nil
	}

	for _, item := range plan {
		fmt.Printf("%s -> %s\n", item.From, item.To)
	}

	if !execute {
		fmt.Printf("\n%d rename(s) pending. Re-run with --execute to apply.\n", len(plan))
		return nil
	}

	applied, err := renamer.Execute(plan)
	if err != nil {
		return err
	}
	fmt.Printf("\nApplied %d rename(s)\n", applied)
	log.Info().Int("applied", applied).Msg("Renames applied")
	return nil
}
