// Package config loads, normalizes, and validates rawsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the knobs the
// organizer and CLI need: which raw extensions to pick up, how conversion
// behaves, and which external binaries to invoke.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lower-cased extensions, and clear validation errors.
package config
