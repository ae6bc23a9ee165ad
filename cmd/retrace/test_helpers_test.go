package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"retrace/internal/config"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	cfg        *config.Config
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Analyzer.APIKey = "test"
	cfgVal.Analyzer.BatchDelaySeconds = 0
	cfgVal.User = "test-user"

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfgVal)

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		cfg:        &cfgVal,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"user = %q\n\n[paths]\ndata_dir = %q\nlog_dir = %q\n\n[analyzer]\napi_key = %q\nbatch_delay_seconds = %d\n\n[review]\nsession_limit = %d\n",
		cfg.User,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Analyzer.APIKey,
		cfg.Analyzer.BatchDelaySeconds,
		cfg.Review.SessionLimit,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatalf("write test image: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string, stdin string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, configPath, stdin)
}

// runCLIContext mirrors main: the provided context flows through
// ExecuteContext into every command.
func runCLIContext(t *testing.T, ctx context.Context, args []string, configPath string, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
