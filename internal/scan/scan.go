// SPDX-License-Identifier: MPL-2.0

// Package scan lists the files of a source tree in the order the packer
// consumes them.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrScan is returned when the directory tree cannot be walked.
var ErrScan = errors.New("recursive directory scan failed")

// ValidatePatterns reports the first malformed ignore pattern.
func ValidatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid ignore pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// Files returns every non-directory entry below root, depth first, with the
// entries of each directory in lexical order. Symbolic links are listed as
// files and not followed.
//
// ignore holds doublestar patterns matched against slash separated paths
// relative to root. A matching file is skipped; a matching directory is not
// descended into.
func Files(root string, ignore []string) ([]string, error) {
	if err := ValidatePatterns(ignore); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if ignored(filepath.ToSlash(rel), ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScan, err)
	}
	return files, nil
}

func ignored(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if doublestar.MatchUnvalidated(pat, rel) {
			return true
		}
	}
	return false
}
