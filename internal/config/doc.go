// Package config loads and validates the TOML configuration for retrace.
//
// Configuration resolves in three layers: compiled defaults, the config file
// (default ~/.config/retrace/config.toml), and environment overrides for
// secrets. Call Validate before using a loaded config and EnsureDirectories
// before touching the data or log directories.
package config
