// SPDX-License-Identifier: MPL-2.0

// Package writer stages packed output in a temporary file next to the
// destination and publishes it only once the whole output was produced.
package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempPattern is the os.CreateTemp pattern of the staging file.
const TempPattern = "PJS*"

var (
	// ErrTargetIsFile is returned when a non-directory occupies the target directory path.
	ErrTargetIsFile = errors.New("target directory path is a file")
	// ErrTargetCreate is returned when the target directory cannot be created.
	ErrTargetCreate = errors.New("could not create target directory")
	// ErrTempCreate is returned when the staging file cannot be created.
	ErrTempCreate = errors.New("could not create temporary file")
	// ErrTempWrite is returned when writing to the staging file fails.
	ErrTempWrite = errors.New("could not write to temporary file")
	// ErrOutputWrite is returned when the staged output cannot be copied to the destination.
	ErrOutputWrite = errors.New("could not write to the output file")
)

type (
	// Confirmer asks the user a yes/no question.
	Confirmer interface {
		Confirm(title, question string) (bool, error)
	}

	// Writer stages output for a single destination file.
	// Discard may be called any number of times, also after Commit.
	Writer struct {
		dir       string
		finalPath string
		tmp       *os.File
		tmpPath   string
		closed    bool
	}
)

// Open prepares dir, creating it when missing, and creates the staging file
// inside it. finalPath is the destination published by Commit.
func Open(dir, finalPath string) (*Writer, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrTargetIsFile, dir)
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTargetCreate, dir, mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %w", ErrTargetCreate, dir, err)
	}

	f, err := os.CreateTemp(dir, TempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTempCreate, err)
	}

	return &Writer{
		dir:       dir,
		finalPath: finalPath,
		tmp:       f,
		tmpPath:   f.Name(),
	}, nil
}

// Dir returns the target directory.
func (w *Writer) Dir() string { return w.dir }

// FinalPath returns the destination file.
func (w *Writer) FinalPath() string { return w.finalPath }

// TempPath returns the staging file path.
func (w *Writer) TempPath() string { return w.tmpPath }

// ConfirmOverwrite asks c whether an existing destination may be replaced.
// Nothing is asked when force is set or the destination does not exist. When
// the answer is negative the staging file is discarded and proceed is false.
func (w *Writer) ConfirmOverwrite(force bool, c Confirmer) (proceed bool, err error) {
	if force {
		return true, nil
	}
	if _, statErr := os.Stat(w.finalPath); errors.Is(statErr, os.ErrNotExist) {
		return true, nil
	}

	ok, err := c.Confirm(
		`Output file "`+w.finalPath+`" already exists.`,
		"Do you want to overwrite this file?",
	)
	if err != nil || !ok {
		w.Discard()
		return false, err
	}
	return true, nil
}

// Append writes text to the staging file. On failure the staging file is
// discarded.
func (w *Writer) Append(text string) error {
	if w.closed {
		return fmt.Errorf("%w: writer already closed", ErrTempWrite)
	}
	if _, err := io.WriteString(w.tmp, text); err != nil {
		w.Discard()
		return fmt.Errorf("%w: %w", ErrTempWrite, err)
	}
	return nil
}

// Commit copies the staged output to the destination and removes the staging
// file, whether or not the copy succeeded.
func (w *Writer) Commit() error {
	if w.closed {
		return fmt.Errorf("%w: writer already closed", ErrOutputWrite)
	}
	defer w.Discard()

	if err := w.tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrTempWrite, err)
	}
	if err := copyFile(w.tmpPath, w.finalPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, w.finalPath, err)
	}
	return nil
}

// Discard closes and removes the staging file.
func (w *Writer) Discard() {
	if w.closed {
		return
	}
	w.closed = true
	_ = w.tmp.Close()
	_ = os.Remove(w.tmpPath) // best-effort cleanup
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// Leftovers lists staging files left in dir, for diagnostics and tests.
func Leftovers(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, TempPattern))
}
