// Package config loads, validates, and normalizes Plume configuration.
//
// Configuration lives in a TOML file (default ~/.config/plume/config.toml,
// falling back to plume.toml in the working directory). Load applies defaults
// for missing values, expands ~ in path fields, and rejects unusable values
// before anything else starts. Other packages receive a fully normalized
// *Config and never re-validate.
package config
