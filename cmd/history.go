package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gdrive-backup/internal/journal"
	"gdrive-backup/internal/model"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "Show the outcome of recent backup runs",
	RunE:         runHistory,
	SilenceUsage: true,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	jnl, err := journal.Open(cfg.JournalFile)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer jnl.Close()

	runs, err := jnl.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs yet.")
		return nil
	}

	for _, run := range runs {
		label := ""
		if run.DryRun {
			label = " (dry run)"
		}
		fmt.Printf("Run #%d  %s%s\n", run.ID, run.Started.Format("2006-01-02 15:04:05"), label)
		fmt.Printf("  %d mappings: %d succeeded, %d degraded, %d failed\n",
			run.Mappings, run.Succeeded, run.Degraded, run.Failed)

		results, err := jnl.RunResults(run.ID)
		if err != nil {
			return err
		}
		for _, res := range results {
			fmt.Printf("  [%s] %s -> %s", res.State, res.Source, res.Destination)
			if res.State == model.StateFailed && res.Error != "" {
				fmt.Printf(": %s", res.Error)
			}
			fmt.Println()
		}
		fmt.Println()
	}
	return nil
}
