package config

import (
	"os"

	"github.com/nibzard/retrotodo/internal/utils"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "RETROTODO_"

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	str := func(name, field string, target *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*target = v
			mark(field)
		}
	}
	boolean := func(name, field string, target *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*target = utils.BoolFromString(v)
			mark(field)
		}
	}

	str("BASE_URL", "base_url", &cfg.BaseURL)
	str("TIMEOUT", "request_timeout", &cfg.RequestTimeout)
	str("THEME", "theme", &cfg.Theme)

	// Logging configuration
	str("LOG_DIR", "log_dir", &cfg.LogDir)
	str("LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("LOG_CALLER", "log_caller", &cfg.LogCaller)

	// Reference backend
	str("SERVE_ADDR", "serve.addr", &cfg.Serve.Addr)
	str("SERVE_DB", "serve.db", &cfg.Serve.DB)
}
