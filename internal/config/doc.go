// Package config loads, normalizes, and validates logmirror configuration.
//
// Settings come from repository defaults, then an optional TOML file, then
// LOGMIRROR_* environment variables; the CLI applies its flags last. Paths are
// expanded (including ~), instance lists are de-duplicated, and Validate
// returns the first problem with the dotted key that caused it.
package config
