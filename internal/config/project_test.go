package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProjectConfigFindsParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	cfgPath := filepath.Join(root, projectConfigFileName)
	content := `
default_output: ./out
workers: 4
on_conflict: versioned
retry: 2
retry_delay: 1s
load_timeout: 45s
thumbnails: 12
report_format: JSON
policy: hero
policies:
  hero: 20
  teaser: 6.5
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, foundPath, err := LoadProjectConfig(nested)
	if err != nil {
		t.Fatalf("LoadProjectConfig failed: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected config, got nil")
	}
	if foundPath != cfgPath {
		t.Fatalf("unexpected config path: %s", foundPath)
	}
	if cfg.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Workers)
	}
	if cfg.Retry != 2 || cfg.RetryDelay.Duration != time.Second {
		t.Fatalf("unexpected retry settings: %d %v", cfg.Retry, cfg.RetryDelay)
	}
	if cfg.LoadTimeout.Duration != 45*time.Second {
		t.Fatalf("unexpected load timeout: %v", cfg.LoadTimeout)
	}
	if cfg.Thumbnails != 12 {
		t.Fatalf("unexpected thumbnails: %d", cfg.Thumbnails)
	}
	if cfg.ReportFormat != "json" {
		t.Fatalf("unexpected report format: %s", cfg.ReportFormat)
	}
	if cfg.Policy != "hero" || cfg.Policies["teaser"] != 6.5 {
		t.Fatalf("unexpected policies: %s %v", cfg.Policy, cfg.Policies)
	}
}

func TestLoadProjectConfigMissingFile(t *testing.T) {
	cfg, path, err := LoadProjectConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProjectConfig failed: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config for missing file")
	}
	if path != "" {
		t.Fatalf("expected empty path, got: %s", path)
	}
}

func TestLoadProjectConfigNumericDuration(t *testing.T) {
	root := t.TempDir()
	content := "load_timeout: 10\nretry_delay: 0.5\n"
	if err := os.WriteFile(filepath.Join(root, projectConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, _, err := LoadProjectConfig(root)
	if err != nil {
		t.Fatalf("LoadProjectConfig failed: %v", err)
	}
	if cfg.LoadTimeout.Duration != 10*time.Second {
		t.Fatalf("unexpected load timeout: %v", cfg.LoadTimeout)
	}
	if cfg.RetryDelay.Duration != 500*time.Millisecond {
		t.Fatalf("unexpected retry delay: %v", cfg.RetryDelay)
	}
}

func TestLoadProjectConfigInvalidValue(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative workers", "workers: -1"},
		{"bad conflict", "on_conflict: rename"},
		{"bad report", "report_format: pdf"},
		{"bad duration", "load_timeout: soon"},
		{"negative policy", "policies:\n  hero: -3"},
		{"unknown key", "quality: 80"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cfgPath := filepath.Join(root, projectConfigFileName)
			if err := os.WriteFile(cfgPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if _, _, err := LoadProjectConfig(root); err == nil {
				t.Fatalf("expected error for %q", tt.content)
			}
		})
	}
}

func TestEmptyProjectConfigIsValid(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, projectConfigFileName), nil, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, _, err := LoadProjectConfig(root)
	if err != nil {
		t.Fatalf("LoadProjectConfig failed: %v", err)
	}
	if cfg == nil || cfg.Workers != 0 {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestAppConfigRoundTrip(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	if !IsFirstRun() {
		t.Fatalf("expected first run on empty config dir")
	}
	if err := MarkFirstRunDone(); err != nil {
		t.Fatalf("MarkFirstRunDone failed: %v", err)
	}
	if err := SetLastPolicy(" Hero "); err != nil {
		t.Fatalf("SetLastPolicy failed: %v", err)
	}
	if IsFirstRun() {
		t.Fatalf("expected first run to be recorded")
	}
	if got := GetLastPolicy(); got != "hero" {
		t.Fatalf("unexpected last policy: %q", got)
	}
}
