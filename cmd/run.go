package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gdrive-backup/internal/auth"
	"gdrive-backup/internal/drive"
	"gdrive-backup/internal/journal"
	"gdrive-backup/internal/logger"
	"gdrive-backup/internal/model"
	"gdrive-backup/internal/task"
)

var strictMode bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Back up all configured mappings to Google Drive",
	Long: `Processes every configured mapping in order: the destination folder is
resolved (and created when missing), its current contents are deleted, and
the local source tree is uploaded in its place.

The command exits non-zero when any mapping fails outright. Mappings that
finish with per-item errors are reported as degraded; use --strict to make
those fail the run as well.`,
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	runCmd.Flags().BoolVar(&strictMode, "strict", false, "Treat degraded mappings as failures")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	oauthCfg, err := auth.OAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	token, err := auth.LoadToken(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("no usable token at %s, run 'gdrive-backup auth' first: %w", cfg.TokenFile, err)
	}

	ctx := cmd.Context()
	ts := auth.NewTokenSource(ctx, oauthCfg, cfg.TokenFile, token)

	client, err := drive.NewClient(ctx, ts)
	if err != nil {
		return fmt.Errorf("failed to connect to Google Drive: %w", err)
	}

	jnl, err := journal.Open(cfg.JournalFile)
	if err != nil {
		logger.Warning("Run history will not be recorded: %v", err)
		jnl = nil
	} else {
		defer jnl.Close()
	}

	runner := task.NewRunner(client, jnl, safeMode)
	summary := runner.Run(ctx, cfg.Mappings)

	printSummary(summary)

	if !summary.Ok(strictMode) {
		bad := summary.Count(model.StateFailed)
		if strictMode {
			bad += summary.Count(model.StateDegraded)
		}
		return fmt.Errorf("%d of %d mappings did not complete successfully", bad, len(summary.Results))
	}
	return nil
}

func printSummary(summary *model.RunSummary) {
	fmt.Printf("\nBackup summary (%d mappings, %.1fs):\n",
		len(summary.Results), summary.Finished.Sub(summary.Started).Seconds())

	for _, res := range summary.Results {
		line := fmt.Sprintf("  [%s] %s -> %s", res.State, res.Mapping.Source, res.Mapping.Destination)
		switch res.State {
		case model.StateSucceeded, model.StateDegraded:
			line += fmt.Sprintf(" (%d uploaded, %d deleted", res.FilesUploaded, res.ItemsDeleted)
			if res.ItemErrors > 0 {
				line += fmt.Sprintf(", %d errors", res.ItemErrors)
			}
			line += ")"
		case model.StateFailed:
			if res.Err != nil {
				line += fmt.Sprintf(": %v", res.Err)
			}
		}
		fmt.Println(line)
	}
}
