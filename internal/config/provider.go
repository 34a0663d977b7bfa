// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/spf13/pflag"
)

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ProjectDir is the absolute project directory; defaults derive from its name.
		ProjectDir string
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// NoConfigFile skips config files entirely, even when ConfigFilePath is set.
		NoConfigFile bool
		// Flags are consulted for overrides; only flags the user set take effect.
		Flags *pflag.FlagSet
	}

	// Result is a resolved configuration plus where it came from.
	Result struct {
		Config *Config
		// Path is the config file consulted, or the one that would have been.
		Path string
		// Found reports whether Path existed and was read.
		Found bool
		// Skipped reports that config files were disabled.
		Skipped bool
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Result, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Result, error) {
	return loadWithOptions(ctx, opts)
}
