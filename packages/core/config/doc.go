// Package config handles configuration loading and management for pagefetch.
//
// It provides functionality for:
//   - Loading configuration from .pagefetch.yaml or .pagefetch.json files
//   - Default configuration values
//   - PAGEFETCH_* environment overrides and .env files
package config
