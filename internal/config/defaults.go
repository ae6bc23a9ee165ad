package config

const (
	defaultDataDir           = "~/.local/share/retrace"
	defaultLogDir            = "~/.local/share/retrace/logs"
	defaultAnalyzerBaseURL   = "https://api.deepseek.com"
	defaultAnalyzerModel     = "deepseek-chat"
	defaultAnalyzerTimeout   = 60
	defaultBatchDelaySeconds = 2
	defaultSessionLimit      = 20
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultUser              = "local"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Analyzer: Analyzer{
			BaseURL:           defaultAnalyzerBaseURL,
			Model:             defaultAnalyzerModel,
			TimeoutSeconds:    defaultAnalyzerTimeout,
			BatchDelaySeconds: defaultBatchDelaySeconds,
		},
		Review: Review{
			SessionLimit: defaultSessionLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		User: defaultUser,
	}
}
