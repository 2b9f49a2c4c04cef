package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName     = ".retrotodo"
	configFileName = "retrotodo.toml"
)

// projectConfigNames are checked in the working directory, in order.
var projectConfigNames = []string{"retrotodo.toml", ".retrotodo.toml"}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range projectConfigNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.retrotodo/retrotodo.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, appDirName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "retrotodo", configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.BaseURL = DefaultBaseURL
	cfg.RequestTimeout = ""
	cfg.Theme = DefaultTheme
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Serve.Addr = DefaultServeAddr
	cfg.Serve.DB = ""
}

// GetConfigFile returns the active config file path, preferring the project file.
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws.ProjectFile != "" {
		return cws.ProjectFile
	}
	return cws.UserFile
}

// SourceOf returns where field came from.
func (cws *ConfigWithSources) SourceOf(field string) ConfigSource {
	if s, ok := cws.Sources[field]; ok {
		return s
	}
	return SourceDefault
}
