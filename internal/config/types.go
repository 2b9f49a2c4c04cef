package config

import (
	"time"

	"github.com/nibzard/retrotodo/internal/theme"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files that were read, empty when absent.
	UserFile    string
	ProjectFile string
}

// Default values.
const (
	DefaultBaseURL   = "http://localhost:5001"
	DefaultTheme     = "light"
	DefaultLogDir    = "~/.retrotodo/logs"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultServeAddr = ":5001"
)

// Config holds the full configuration for retrotodo.
type Config struct {
	// Backend
	BaseURL        string `toml:"base_url"`
	RequestTimeout string `toml:"request_timeout"`

	// Presentation
	Theme string `toml:"theme"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Reference backend
	Serve ServeConfig `toml:"serve"`

	// Computed by finalizeConfig
	Timeout       time.Duration `toml:"-"`
	SelectedTheme theme.Theme   `toml:"-"`
}

// ServeConfig configures the reference backend started by `retrotodo serve`.
type ServeConfig struct {
	Addr string `toml:"addr"`
	// DB is a SQLite file path. Empty keeps tasks in memory.
	DB string `toml:"db"`
}
