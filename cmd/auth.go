package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"gdrive-backup/internal/auth"
	"gdrive-backup/internal/logger"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to your Google Drive",
	Long: `Runs the OAuth browser flow and stores the resulting token next to the
configuration. Run this once before the first backup, and again whenever
the stored token has been revoked.`,
	RunE:         runAuth,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	if _, err := auth.LoadToken(cfg.TokenFile); err == nil {
		prompt := promptui.Prompt{
			Label:     "A token already exists, authorize again",
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			logger.Info("Keeping the existing token.")
			return nil
		}
	}

	oauthCfg, err := auth.OAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	token, err := auth.PerformFlow(cmd.Context(), oauthCfg)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	if err := auth.SaveToken(cfg.TokenFile, token); err != nil {
		return err
	}

	logger.Info("Authorization complete, token saved to %s", cfg.TokenFile)
	return nil
}
