// Package config loads, normalizes, and validates filmsuite configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as ASSEMBLYAI_API_KEY and OPENROUTER_API_KEY.
// Every artifact directory is derived from paths.data_dir unless overridden.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
