package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":8321" {
		t.Fatalf("unexpected default listen %q", cfg.Listen)
	}
	if cfg.CRM.BaseURL == "" {
		t.Fatal("expected default base URL")
	}
	if cfg.Sweep.Enabled {
		t.Fatal("sweep should be disabled by default")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
listen: ":9000"
log_level: debug
read_only: true
crm:
  base_url: "https://crm.example.com"
`)
	t.Setenv("CRM_MCP_LISTEN", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":9999" {
		t.Fatalf("env override lost, got %q", cfg.Listen)
	}
	if cfg.LogLevel != "debug" || !cfg.ReadOnly {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.CRM.BaseURL != "https://crm.example.com" {
		t.Fatalf("unexpected base URL %q", cfg.CRM.BaseURL)
	}
}

func TestLoadSweepValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid sweep",
			content: `
sweep:
  enabled: true
  schedule: "0 6 * * *"
  threshold_days: 45
  token: "tok"
`,
		},
		{
			name: "missing token",
			content: `
sweep:
  enabled: true
  schedule: "0 6 * * *"
  threshold_days: 45
`,
			wantErr: true,
		},
		{
			name: "threshold out of range",
			content: `
sweep:
  enabled: true
  schedule: "0 6 * * *"
  threshold_days: 400
  token: "tok"
`,
			wantErr: true,
		},
		{
			name: "disabled sweep skips validation",
			content: `
sweep:
  enabled: false
  threshold_days: 400
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := Load(path)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
