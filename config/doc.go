// Package config loads the binfile application configuration.
//
// Configuration is read from JSON or YAML files (chosen by extension), merged over
// built-in defaults in layer order, and finally overridden by BINFILE_* environment
// variables:
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yaml")
//	loader.AddLayer("configs/production.json")
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//
// Component configs are kept as raw JSON and handed to the component factories
// unchanged, so YAML files are normalized to JSON before decoding.
//
// SafeConfig wraps a Config for concurrent access; Get always returns a deep copy.
package config
