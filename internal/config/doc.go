// Package config loads, normalizes, and validates the archiver
// configuration. Values come from a TOML file with optional .env/environment
// fallbacks for broker credentials, and all path fields are expanded to
// absolute form before use.
package config
