// Package config loads, normalizes, and validates poolrecon configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// POOLRECON_CONCURRENCY. The Config type centralizes every knob the indexer
// and the recon pool need, from metadata column names to the external tool
// binary and its environment variables.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
