// Package config loads, normalizes, and validates notefind configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), and
// reads TOML files from ~/.config/notefind/config.toml or ./notefind.toml.
// Search defaults, save timing and logging destinations are resolved here so
// commands receive a single sanitized Config.
package config
