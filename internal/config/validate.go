package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnalyzer(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.User == "" {
		return errors.New("user must be set")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAnalyzer() error {
	if c.Analyzer.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/retrace/config.toml"
		}
		return fmt.Errorf("analyzer.api_key is required. Set RETRACE_ANALYZER_API_KEY env var or edit %s (create with 'retrace config init')", defaultPath)
	}
	if c.Analyzer.BaseURL == "" {
		return errors.New("analyzer.base_url must be set")
	}
	if c.Analyzer.Model == "" {
		return errors.New("analyzer.model must be set")
	}
	if c.Analyzer.TimeoutSeconds <= 0 {
		return errors.New("analyzer.timeout_seconds must be positive")
	}
	if c.Analyzer.BatchDelaySeconds < 0 {
		return errors.New("analyzer.batch_delay_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.SessionLimit <= 0 {
		return errors.New("review.session_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
