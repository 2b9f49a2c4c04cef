package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# retrotodo configuration file
# Values can be overridden by RETROTODO_* environment variables or CLI flags

# Backend base URL (absolute http or https)
base_url = "http://localhost:5001"

# Per-request timeout as a Go duration (e.g. "5s"). Empty means no timeout.
request_timeout = ""

# Initial theme: light or dark
theme = "light"

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.retrotodo/logs"

# Logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false

# Reference backend started by "retrotodo serve"
[serve]
addr = ":5001"
# SQLite database file. Leave empty to keep tasks in memory.
# db = "~/.retrotodo/todos.db"
`
}
