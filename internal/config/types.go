// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"packjs-cli/internal/jsname"
)

const (
	// KeyInternalName is the variable holding the project object inside the closure.
	KeyInternalName = "internal_name"
	// KeyExternalName is the global the project object is published as.
	KeyExternalName = "external_name"
	// KeyMainFile is the file name of the main file in src/.
	KeyMainFile = "main_file"
	// KeyOutputFile is the file name of the packed output in bin/.
	KeyOutputFile = "output_file"
	// KeyPackageStartFile is the file name of package prologues.
	KeyPackageStartFile = "package_start_file"
	// KeyPackageEndFile is the file name of package epilogues.
	KeyPackageEndFile = "package_end_file"
	// KeyIgnore lists doublestar patterns excluded from the scan.
	KeyIgnore = "ignore"
)

var (
	// ErrInvalidName is returned when internal_name or external_name is not an identifier.
	ErrInvalidName = errors.New("not a valid JavaScript identifier")
	// ErrInvalidFileName is returned when a file name setting is empty or contains a separator.
	ErrInvalidFileName = errors.New("invalid file name")
)

// Config is the resolved configuration of a packjs project.
type Config struct {
	InternalName     string   `mapstructure:"internal_name" toml:"internal_name" comment:"Variable holding the project object inside the generated closure.\nIf a main file is present it MUST use this name."`
	ExternalName     string   `mapstructure:"external_name" toml:"external_name" comment:"Global the project object is published as, e.g. \"ME\" makes it window.ME."`
	MainFile         string   `mapstructure:"main_file" toml:"main_file" comment:"Main file, directly inside src/."`
	OutputFile       string   `mapstructure:"output_file" toml:"output_file" comment:"Packed output, written to bin/."`
	PackageStartFile string   `mapstructure:"package_start_file" toml:"package_start_file" comment:"Emitted at the top of each package, before its other files."`
	PackageEndFile   string   `mapstructure:"package_end_file" toml:"package_end_file" comment:"Emitted at the bottom of each package, after its other files."`
	Ignore           []string `mapstructure:"ignore" toml:"ignore" comment:"doublestar patterns, relative to src/, left out of the bundle."`
}

// Setting is a single named value of a Config.
type Setting struct {
	Key   string
	Value string
}

// DefaultConfig returns the defaults for the project in projectDir. The
// external name and output file are derived from the directory name.
func DefaultConfig(projectDir string) *Config {
	name := filepath.Base(projectDir)
	return &Config{
		InternalName:     "main",
		ExternalName:     jsname.Sanitize(name),
		MainFile:         "main.js",
		OutputFile:       name + ".js",
		PackageStartFile: "_start.js",
		PackageEndFile:   "_end.js",
		Ignore:           []string{},
	}
}

// Settings returns the scalar settings in their canonical order.
func (c *Config) Settings() []Setting {
	return []Setting{
		{KeyInternalName, c.InternalName},
		{KeyExternalName, c.ExternalName},
		{KeyMainFile, c.MainFile},
		{KeyOutputFile, c.OutputFile},
		{KeyPackageStartFile, c.PackageStartFile},
		{KeyPackageEndFile, c.PackageEndFile},
	}
}

// Validate checks the values the CUE schema cannot see, i.e. those coming
// from command-line flags.
func (c *Config) Validate() error {
	for _, s := range []Setting{{KeyInternalName, c.InternalName}, {KeyExternalName, c.ExternalName}} {
		if !jsname.Valid(s.Value) {
			return fmt.Errorf("%s %q: %w", s.Key, s.Value, ErrInvalidName)
		}
	}
	for _, s := range c.Settings()[2:] {
		if s.Value == "" || filepath.Base(s.Value) != s.Value {
			return fmt.Errorf("%s %q: %w", s.Key, s.Value, ErrInvalidFileName)
		}
	}
	return nil
}
