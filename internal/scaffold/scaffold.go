// SPDX-License-Identifier: MPL-2.0

// Package scaffold creates the layout of a new packjs project: src/ and bin/,
// a commented config.toml and a starter src/main.js.
package scaffold

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"packjs-cli/internal/config"
)

var (
	// ErrIsFile is returned when the target path names a regular file.
	ErrIsFile = errors.New("path is a file")
	// ErrNotEmpty is returned when the target directory already has entries.
	ErrNotEmpty = errors.New("project directory is not empty")
	// ErrCreateDir is returned when the project, src or bin directory cannot be created.
	ErrCreateDir = errors.New("could not create directory")
)

//go:embed main.js.tmpl
var mainTemplateText string

var mainTemplate = template.Must(template.New("main.js").Parse(mainTemplateText))

// Result describes a scaffolded project.
type Result struct {
	Dir        string
	DirCreated bool
	ConfigFile string
	MainFile   string
	Config     *config.Config
	// Warnings holds failures to write the optional files. The project is
	// usable without them.
	Warnings []error
}

// Create scaffolds a project in dir. dir is created when missing and must be
// empty otherwise.
func Create(dir string) (*Result, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", dir, err)
	}

	res := &Result{Dir: abs}

	info, err := os.Stat(abs)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%s: %w", abs, ErrIsFile)
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.Mkdir(abs, 0o755); mkErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCreateDir, abs, mkErr)
		}
		res.DirCreated = true
	case err != nil:
		return nil, fmt.Errorf("invalid path %q: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateDir, abs, err)
	}
	if len(entries) > 0 {
		return nil, fmt.Errorf("%w (contains %d files)", ErrNotEmpty, len(entries))
	}

	for _, sub := range []string{"src", "bin"} {
		p := filepath.Join(abs, sub)
		if err := os.Mkdir(p, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCreateDir, p, err)
		}
	}

	res.Config = config.DefaultConfig(abs)

	res.ConfigFile = filepath.Join(abs, config.ConfigFileName+"."+config.ConfigFileExt)
	if err := config.Write(res.ConfigFile, res.Config, false); err != nil {
		res.Warnings = append(res.Warnings, fmt.Errorf("could not create the config file %s: %w", res.ConfigFile, err))
	}

	res.MainFile = filepath.Join(abs, "src", res.Config.MainFile)
	if err := writeMain(res.MainFile, res.Config); err != nil {
		res.Warnings = append(res.Warnings, fmt.Errorf("could not create the main file %s: %w", res.MainFile, err))
	}

	return res, nil
}

// MainFile renders the starter main file for cfg.
func MainFile(cfg *config.Config) (string, error) {
	var sb strings.Builder
	err := mainTemplate.Execute(&sb, struct{ Internal, External string }{cfg.InternalName, cfg.ExternalName})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeMain(path string, cfg *config.Config) error {
	content, err := MainFile(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
