package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"gdrive-backup/internal/model"

	"github.com/spf13/viper"
)

const (
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
	DefaultJournalFile     = "history.db"
	DefaultLogDir          = "logs"
)

// Config holds everything a run needs: the OAuth file locations, the log
// and journal paths, and the ordered list of backup mappings.
type Config struct {
	CredentialsFile string
	TokenFile       string
	JournalFile     string
	LogDir          string
	Mappings        []model.Mapping
}

// Load reads the YAML configuration at path, applies environment overrides
// (GOOGLE_CREDENTIALS_FILE, GOOGLE_TOKEN_FILE) and validates the result.
// Relative file paths resolve against the config file's directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("credentials_file", DefaultCredentialsFile)
	v.SetDefault("token_file", DefaultTokenFile)
	v.SetDefault("journal_file", DefaultJournalFile)
	v.SetDefault("log_dir", DefaultLogDir)

	_ = v.BindEnv("credentials_file", "GOOGLE_CREDENTIALS_FILE")
	_ = v.BindEnv("token_file", "GOOGLE_TOKEN_FILE")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{
		CredentialsFile: v.GetString("credentials_file"),
		TokenFile:       v.GetString("token_file"),
		JournalFile:     v.GetString("journal_file"),
		LogDir:          v.GetString("log_dir"),
	}

	var entries []struct {
		Source      string `mapstructure:"source"`
		Destination string `mapstructure:"destination"`
	}
	if err := v.UnmarshalKey("backup_paths", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse backup_paths: %w", err)
	}
	for _, e := range entries {
		cfg.Mappings = append(cfg.Mappings, model.Mapping{Source: e.Source, Destination: e.Destination})
	}

	base := filepath.Dir(path)
	cfg.CredentialsFile = resolvePath(base, cfg.CredentialsFile)
	cfg.TokenFile = resolvePath(base, cfg.TokenFile)
	cfg.JournalFile = resolvePath(base, cfg.JournalFile)
	cfg.LogDir = resolvePath(base, cfg.LogDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Validate rejects configurations no run should start with: an empty
// mapping list, a mapping without a source, or a destination that resolves
// to the Drive root (a run against the root would wipe the whole drive).
func (c *Config) Validate() error {
	if len(c.Mappings) == 0 {
		return fmt.Errorf("no backup_paths configured")
	}
	for i, m := range c.Mappings {
		if m.Source == "" {
			return fmt.Errorf("backup_paths[%d]: source is required", i)
		}
		if strings.Trim(m.Destination, "/") == "" {
			return fmt.Errorf("backup_paths[%d]: destination must name a folder, not the drive root", i)
		}
	}
	return nil
}
