// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.retrotodo/retrotodo.toml or OS-specific config directory)
// 3. Project config file (retrotodo.toml or .retrotodo.toml in the working directory)
// 4. Environment variables (RETROTODO_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.retrotodo/retrotodo.toml (preferred)
// - Windows: %APPDATA%\retrotodo\retrotodo.toml
// - macOS: ~/Library/Application Support/retrotodo/retrotodo.toml
// - Linux/BSD: $XDG_CONFIG_HOME/retrotodo/retrotodo.toml or ~/.config/retrotodo/retrotodo.toml
//
// Project-level config locations (overrides user config):
// - ./retrotodo.toml (preferred)
// - ./.retrotodo.toml
package config
