// SPDX-License-Identifier: MPL-2.0

// Package assemble emits the packed output of a classified project.
//
// The output is one closure over the global window object. The main file comes
// first, then one constructor function per package wrapping its prologue, files
// and epilogue, then the assignments exposing every package on the internal
// object, which is finally published as window.<external name>.
package assemble

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"packjs-cli/internal/project"
	"packjs-cli/internal/warning"
)

// GlobalObject is the name the closure receives the global object under.
const GlobalObject = "window"

var (
	// ErrMainFileRead is returned when the main file cannot be read.
	ErrMainFileRead = errors.New("could not read main file")
	// ErrSourceRead is returned when a package file cannot be read.
	ErrSourceRead = errors.New("could not read source file")
)

type (
	// ReadFunc returns the contents of the file at path.
	ReadFunc func(path string) ([]byte, error)

	// Sink receives the output in emission order.
	Sink interface {
		Append(text string) error
	}

	// Options controls naming in the emitted output.
	Options struct {
		// InternalName is the variable holding the project object inside the closure.
		InternalName string
		// ExternalName is the global the project object is published as.
		ExternalName string
		// OnPackage, when set, is called after each package has been emitted.
		OnPackage func(PackageStat)
	}

	// PackageStat describes one emitted package.
	PackageStat struct {
		Name  string
		Files int
	}

	// Result summarizes an assembly run.
	Result struct {
		// Files counts the package files, prologues and epilogues emitted.
		// The main file is not counted.
		Files    int
		Packages []PackageStat
		Warnings []warning.Warning
	}

	// Buffer is an in-memory Sink.
	Buffer struct {
		sb strings.Builder
	}
)

// Append implements Sink.
func (b *Buffer) Append(text string) error {
	b.sb.WriteString(text)
	return nil
}

// String returns everything appended so far.
func (b *Buffer) String() string {
	return b.sb.String()
}

// ReadFile is the ReadFunc backed by the filesystem.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Run writes the packed form of proj to sink. It stops at the first read or
// sink error; whatever was already appended is left to the caller to discard.
func Run(proj *project.Project, opts Options, read ReadFunc, sink Sink) (Result, error) {
	var (
		res      Result
		warnings warning.Collector
		expose   strings.Builder
	)
	internal := opts.InternalName

	if err := sink.Append("(function(" + GlobalObject + ") {\n"); err != nil {
		return res, err
	}

	if proj.HasMainFile() {
		data, err := read(proj.MainFile)
		if err != nil {
			return res, fmt.Errorf("%w: %s: %w", ErrMainFileRead, proj.MainFile, err)
		}
		content := string(data) + "\n"
		if err := sink.Append(content); err != nil {
			return res, err
		}
		if !referencesName(content, internal) {
			warnings.Add(warning.MainFileNotReferenced, internal)
		}
	} else {
		if err := sink.Append("var " + internal + " = function() {};\n\n"); err != nil {
			return res, err
		}
	}

	for _, pkg := range proj.Packages() {
		if err := emitPackage(pkg, read, sink); err != nil {
			return res, err
		}
		expose.WriteString(internal + "." + pkg.Name + " = " + pkg.Name + ";\n")

		stat := PackageStat{Name: pkg.Name, Files: pkg.FileCount()}
		res.Files += stat.Files
		res.Packages = append(res.Packages, stat)
		if opts.OnPackage != nil {
			opts.OnPackage(stat)
		}
	}

	if err := sink.Append("\n" + expose.String()); err != nil {
		return res, err
	}
	closing := "\n" + GlobalObject + "." + opts.ExternalName + " = " + internal + ";\n" +
		"return " + internal + ";\n" +
		"})(" + GlobalObject + ");\n"
	if err := sink.Append(closing); err != nil {
		return res, err
	}

	res.Warnings = warnings.Warnings()
	return res, nil
}

// String assembles proj into memory.
func String(proj *project.Project, opts Options, read ReadFunc) (string, Result, error) {
	var buf Buffer
	res, err := Run(proj, opts, read, &buf)
	if err != nil {
		return "", res, err
	}
	return buf.String(), res, nil
}

func emitPackage(pkg *project.Package, read ReadFunc, sink Sink) error {
	if err := sink.Append("function _" + pkg.Name + "() {\n"); err != nil {
		return err
	}

	prologue, err := readOptional(pkg.Prologue, read)
	if err != nil {
		return err
	}
	if err := sink.Append(prologue + "\n"); err != nil {
		return err
	}

	for _, f := range pkg.Files {
		data, err := read(f)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSourceRead, f, err)
		}
		if err := sink.Append(string(data) + "\n"); err != nil {
			return err
		}
	}

	epilogue, err := readOptional(pkg.Epilogue, read)
	if err != nil {
		return err
	}
	return sink.Append(epilogue + "\n}\n" + "var " + pkg.Name + " = new _" + pkg.Name + "();\n\n")
}

func readOptional(path string, read ReadFunc) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := read(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSourceRead, path, err)
	}
	return string(data), nil
}

// referencesName reports whether name occurs in content surrounded by
// whitespace on both sides.
func referencesName(content, name string) bool {
	re := regexp.MustCompile(`[\t\n\v\f\r ]` + regexp.QuoteMeta(name) + `[\t\n\v\f\r ]`)
	return re.MatchString(content)
}
