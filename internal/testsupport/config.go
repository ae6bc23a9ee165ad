// Package testsupport provides shared helpers for package tests: disposable
// configs rooted in temp directories and stores opened against them.
package testsupport

import (
	"path/filepath"
	"testing"

	"retrace/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Analyzer.APIKey = "test"
	cfg.Analyzer.BatchDelaySeconds = 0
	cfg.User = "test-user"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithUser overrides the record owner on the test config.
func WithUser(user string) ConfigOption {
	return func(c *config.Config) {
		c.User = user
	}
}

// WithSessionLimit overrides the review session cap on the test config.
func WithSessionLimit(limit int) ConfigOption {
	return func(c *config.Config) {
		c.Review.SessionLimit = limit
	}
}
