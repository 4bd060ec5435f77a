// Package config loads, validates, and normalizes splice's TOML
// configuration.
//
// Load resolves the file location (explicit flag, then the user config dir,
// then a project-local splice.toml), decodes it over the defaults, expands
// every path field, and validates the result. Components receive the typed
// Config rather than re-reading files.
package config
