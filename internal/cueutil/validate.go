// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ValidateMap checks data, decoded from filePath in any format, against the
// CUE definition (e.g. "#Config") of schema.
func ValidateMap(schema, definition string, data map[string]any, filePath string, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	def := schemaValue.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return fmt.Errorf("internal error: schema has no %s definition", definition)
	}

	userValue := ctx.Encode(data)
	if userValue.Err() != nil {
		return FormatError(userValue.Err(), filePath)
	}

	unified := def.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return FormatError(err, filePath)
	}
	return nil
}

// ValidateFile applies the size limit to the raw file contents, then validates
// data decoded from them.
func ValidateFile(schema, definition string, raw []byte, data map[string]any, filePath string, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := CheckFileSize(raw, o.maxFileSize, filePath); err != nil {
		return err
	}
	return ValidateMap(schema, definition, data, filePath, opts...)
}
