package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retrace/internal/config"
)

func TestDefaultValidatesWithAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Analyzer.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing api key")
	}
	if !strings.Contains(err.Error(), "analyzer.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty data dir", func(c *config.Config) { c.Paths.DataDir = "" }},
		{"zero timeout", func(c *config.Config) { c.Analyzer.TimeoutSeconds = 0 }},
		{"negative delay", func(c *config.Config) { c.Analyzer.BatchDelaySeconds = -1 }},
		{"zero session limit", func(c *config.Config) { c.Review.SessionLimit = 0 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"empty user", func(c *config.Config) { c.User = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Analyzer.APIKey = "test-key"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Review.SessionLimit != 20 {
		t.Fatalf("session limit = %d, want default 20", cfg.Review.SessionLimit)
	}
	if cfg.Analyzer.Model == "" {
		t.Fatal("expected default analyzer model")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
user = " alice "

[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[analyzer]
api_key = "k"
base_url = "https://llm.example.com/"
model = "vision-1"
timeout_seconds = 30
batch_delay_seconds = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.User != "alice" {
		t.Fatalf("user = %q, want alice", cfg.User)
	}
	if cfg.Analyzer.BaseURL != "https://llm.example.com" {
		t.Fatalf("base url not trimmed: %q", cfg.Analyzer.BaseURL)
	}
	if cfg.Analyzer.TimeoutSeconds != 30 {
		t.Fatalf("timeout = %d, want 30", cfg.Analyzer.TimeoutSeconds)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "retrace.db") {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nbogus_key = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("RETRACE_ANALYZER_API_KEY", "env-key")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analyzer.APIKey != "env-key" {
		t.Fatalf("api key = %q, want env-key", cfg.Analyzer.APIKey)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
