package config

import (
	"flag"
	"io"
)

// flagFields maps global flag names to the config fields they set.
var flagFields = map[string]string{
	"base-url":       "base_url",
	"timeout":        "request_timeout",
	"theme":          "theme",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses CLI flags. Only flags set explicitly override
// lower layers.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("retrotodo", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
	}

	// Parse into a scratch copy so unset flags keep the lower layers' values.
	parsed := *cfg
	bindFlags(&parsed, fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagFields[f.Name]
		if !ok {
			return
		}
		applyField(cfg, &parsed, field)
		if sources != nil {
			sources[field] = SourceFlag
		}
	})
	return nil
}

func bindFlags(cfg *Config, fs *flag.FlagSet) {
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Backend base URL")
	fs.StringVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout (e.g. 5s); empty for none")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Initial theme (light, dark)")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
}

func applyField(dst, src *Config, field string) {
	switch field {
	case "base_url":
		dst.BaseURL = src.BaseURL
	case "request_timeout":
		dst.RequestTimeout = src.RequestTimeout
	case "theme":
		dst.Theme = src.Theme
	case "log_dir":
		dst.LogDir = src.LogDir
	case "log_level":
		dst.LogLevel = src.LogLevel
	case "log_format":
		dst.LogFormat = src.LogFormat
	case "log_timestamps":
		dst.LogTimestamps = src.LogTimestamps
	case "log_caller":
		dst.LogCaller = src.LogCaller
	}
}
