// SPDX-License-Identifier: MPL-2.0

// Package config resolves the settings of a packjs project using Viper.
//
// Values come from built-in defaults (derived from the project directory name),
// then the project config file (config.toml by default; YAML, JSON and the
// older flat config.ini are accepted too), then command-line flags. File
// contents are validated against an embedded CUE schema (config_schema.cue)
// before they are merged.
package config
