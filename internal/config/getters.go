package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Field returns the effective value of a config field by its TOML key, for
// display.
func (c *Config) Field(name string) string {
	switch name {
	case "base_url":
		return c.BaseURL
	case "request_timeout":
		if c.RequestTimeout == "" {
			return "(none)"
		}
		return c.RequestTimeout
	case "theme":
		return c.Theme
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	case "serve.addr":
		return c.Serve.Addr
	case "serve.db":
		if c.Serve.DB == "" {
			return "(memory)"
		}
		return c.Serve.DB
	default:
		return ""
	}
}

// Fields returns every config field name in display order.
func Fields() []string {
	return configFields()
}

// Describe renders "key = value (source)" lines for every field.
func (cws *ConfigWithSources) Describe() []string {
	lines := make([]string, 0, len(cws.Sources))
	for _, name := range configFields() {
		lines = append(lines, fmt.Sprintf("%s = %s (%s)", name, cws.Config.Field(name), cws.SourceOf(name)))
	}
	return lines
}

// NonDefault returns the names of fields not at their default, sorted.
func (cws *ConfigWithSources) NonDefault() []string {
	var names []string
	for name, src := range cws.Sources {
		if src != SourceDefault {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
