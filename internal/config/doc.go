// Package config loads, normalizes, and validates gleaner's TOML
// configuration. Defaults live in defaults.go; Load layers the config file
// and environment overrides on top, expands ~ in paths, and rejects
// configurations the daemon cannot run with.
package config
