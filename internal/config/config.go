package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Analyzer contains connection settings for the external analysis service.
type Analyzer struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// BatchDelaySeconds is the polite pause between successive analysis
	// calls during a batch run.
	BatchDelaySeconds int `toml:"batch_delay_seconds"`
}

// Review contains settings for review sessions.
type Review struct {
	// SessionLimit caps how many due records one session pulls.
	SessionLimit int `toml:"session_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analyzer Analyzer `toml:"analyzer"`
	Review   Review   `toml:"review"`
	Logging  Logging  `toml:"logging"`
	// User identifies whose records this installation manages.
	User string `toml:"user"`
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "retrace", "config.toml"), nil
}

// Load reads configuration from path, or from the default location when path
// is empty. A missing file yields defaults rather than an error so first runs
// work before `retrace config init`.
func Load(path string) (*Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	}
	expanded, err := ExpandPath(resolved)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(expanded)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	default:
		decoder := toml.NewDecoder(strings.NewReader(string(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, fmt.Errorf("parse config %s: unknown fields:\n%s", expanded, strict.String())
			}
			return nil, fmt.Errorf("parse config %s: %w", expanded, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv("RETRACE_ANALYZER_API_KEY")); key != "" {
		c.Analyzer.APIKey = key
	}
}

func (c *Config) normalize() error {
	for _, dir := range []*string{&c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := ExpandPath(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}
	c.Analyzer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Analyzer.BaseURL), "/")
	c.User = strings.TrimSpace(c.User)
	return nil
}

// EnsureDirectories creates the data and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "retrace.db")
}

// BatchLockPath returns the lock file guarding concurrent batch runs.
func (c *Config) BatchLockPath() string {
	return filepath.Join(c.Paths.DataDir, "analyze.lock")
}

// LogFilePath returns the rolling log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "retrace.log")
}

// WriteSample writes the annotated sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config %s: %w", expanded, err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
