// Package config normalizes and validates extraction run settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and honours environment fallbacks such as GTRADIO_RPF_CLI.
// There is no configuration file: every knob arrives through CLI flags, and
// the Config type centralizes them so source mode, directories, and tool
// paths are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
