package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gdrive-backup/internal/config"
	"gdrive-backup/internal/logger"
)

var (
	configPath string
	safeMode   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gdrive-backup",
	Short: "Mirror local folders into Google Drive.",
	Long: `gdrive-backup mirrors configured local folders into Google Drive.

Each mapping in the configuration pairs a local source path with a
destination folder path on Drive. A run wipes the destination folder and
uploads the source from scratch, so after every run the destination is an
exact copy of the local tree.`,
}

// ExecuteContext runs the root command with the given context. This is the
// entry point for the CLI; the context carries interrupt cancellation down
// to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&safeMode, "safe", "s", false, "Perform a dry run without making remote changes")
}

// setup loads the configuration and points the logger at the configured
// log directory. Every command calls it first.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.LogDir); err != nil {
		return nil, fmt.Errorf("failed to set up log file: %w", err)
	}

	return cfg, nil
}
