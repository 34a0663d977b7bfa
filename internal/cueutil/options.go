// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the default maximum size of a validated file (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// validateOptions holds configuration for schema validation.
	validateOptions struct {
		maxFileSize int64
		concrete    bool
	}

	// Option configures validation behavior.
	Option func(*validateOptions)
)

// defaultOptions returns the default validation options.
func defaultOptions() validateOptions {
	return validateOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithMaxFileSize sets the maximum allowed file size.
// Default is DefaultMaxFileSize (5MB).
func WithMaxFileSize(size int64) Option {
	return func(o *validateOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true (require concrete values).
func WithConcrete(concrete bool) Option {
	return func(o *validateOptions) {
		o.concrete = concrete
	}
}
