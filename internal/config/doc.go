// Package config loads, normalizes, and validates subfab configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and pipeline need: segmentation tuning, mistiming thresholds, padding
// limits, translation batching, and provider credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
