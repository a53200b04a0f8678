package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
credentials_file: creds/client.json
token_file: /var/lib/backup/token.json
log_dir: out
backup_paths:
  - source: /home/user/docs
    destination: Backups/Docs
  - source: /home/user/notes.txt
    destination: Backups/Notes
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	base := filepath.Dir(path)
	if cfg.CredentialsFile != filepath.Join(base, "creds/client.json") {
		t.Errorf("Expected relative credentials path resolved against config dir, got %s", cfg.CredentialsFile)
	}
	if cfg.TokenFile != "/var/lib/backup/token.json" {
		t.Errorf("Expected absolute token path untouched, got %s", cfg.TokenFile)
	}
	if cfg.LogDir != filepath.Join(base, "out") {
		t.Errorf("Expected log dir resolved against config dir, got %s", cfg.LogDir)
	}
	if cfg.JournalFile != filepath.Join(base, DefaultJournalFile) {
		t.Errorf("Expected default journal file, got %s", cfg.JournalFile)
	}

	if len(cfg.Mappings) != 2 {
		t.Fatalf("Expected 2 mappings, got %d", len(cfg.Mappings))
	}
	if cfg.Mappings[0].Source != "/home/user/docs" || cfg.Mappings[0].Destination != "Backups/Docs" {
		t.Errorf("First mapping not parsed correctly: %+v", cfg.Mappings[0])
	}
	if cfg.Mappings[1].Source != "/home/user/notes.txt" {
		t.Errorf("Mapping order not preserved: %+v", cfg.Mappings[1])
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/backup/credentials.json")
	t.Setenv("GOOGLE_TOKEN_FILE", "/etc/backup/token.json")

	path := writeConfig(t, `
credentials_file: ignored.json
backup_paths:
  - source: /data
    destination: Backups/Data
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CredentialsFile != "/etc/backup/credentials.json" {
		t.Errorf("Expected env to override credentials_file, got %s", cfg.CredentialsFile)
	}
	if cfg.TokenFile != "/etc/backup/token.json" {
		t.Errorf("Expected env to override token_file, got %s", cfg.TokenFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid",
			content: `
backup_paths:
  - source: /data
    destination: Backups/Data
`,
			wantErr: false,
		},
		{
			name:    "no mappings",
			content: `log_dir: logs`,
			wantErr: true,
		},
		{
			name: "missing source",
			content: `
backup_paths:
  - destination: Backups/Data
`,
			wantErr: true,
		},
		{
			name: "missing destination",
			content: `
backup_paths:
  - source: /data
`,
			wantErr: true,
		},
		{
			name: "root destination",
			content: `
backup_paths:
  - source: /data
    destination: "/"
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if tt.wantErr && err == nil {
				t.Error("Expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}
