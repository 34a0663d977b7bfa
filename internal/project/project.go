// SPDX-License-Identifier: MPL-2.0

// Package project classifies the files of a packjs source tree into a main
// file and an ordered set of packages.
//
// Files directly inside the source root are root-level; only the one named
// like the configured main file is used. Files in any directory below the root
// belong to the package named after the first directory segment, whatever
// their depth. Inside a package the configured prologue and epilogue file
// names are pulled out of the regular file list.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"packjs-cli/internal/jsname"
	"packjs-cli/internal/warning"
)

// Extension is the only file extension taken into account.
const Extension = ".js"

// ErrNotUnderRoot is returned when a scanned path is not located below the
// source root.
var ErrNotUnderRoot = errors.New("path is not under the source root")

type (
	// Names holds the configured special file names.
	Names struct {
		Main     string
		Prologue string
		Epilogue string
	}

	// Package is a named group of source files emitted as one closure.
	Package struct {
		// Name is the sanitized first directory segment below the source root.
		Name string
		// Prologue is emitted before the files; empty when the package has none.
		Prologue string
		// Epilogue is emitted after the files; empty when the package has none.
		Epilogue string
		// Files keeps scan order.
		Files []string
	}

	// Project is the classified source tree. Build it with Build.
	Project struct {
		// Root is the source root the paths were classified against.
		Root string
		// MainFile is empty when no root-level file matched the main file name.
		MainFile string

		packages []*Package
		index    map[string]int
	}
)

// HasPrologue reports whether the package has a prologue file.
func (p *Package) HasPrologue() bool { return p.Prologue != "" }

// HasEpilogue reports whether the package has an epilogue file.
func (p *Package) HasEpilogue() bool { return p.Epilogue != "" }

// FileCount returns the number of files the package contributes to the output,
// prologue and epilogue included.
func (p *Package) FileCount() int {
	n := len(p.Files)
	if p.HasPrologue() {
		n++
	}
	if p.HasEpilogue() {
		n++
	}
	return n
}

// New returns an empty project rooted at root.
func New(root string) *Project {
	return &Project{Root: root, index: make(map[string]int)}
}

// HasMainFile reports whether a main file was found.
func (p *Project) HasMainFile() bool { return p.MainFile != "" }

// Packages returns the packages in the order their directory was first seen.
func (p *Project) Packages() []*Package {
	out := make([]*Package, len(p.packages))
	copy(out, p.packages)
	return out
}

// Package returns the package called name.
func (p *Project) Package(name string) (*Package, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.packages[i], true
}

// PackageNames returns the package names in emission order.
func (p *Project) PackageNames() []string {
	names := make([]string, len(p.packages))
	for i, pkg := range p.packages {
		names[i] = pkg.Name
	}
	return names
}

// Paths returns every classified path: the main file first, then for each
// package its prologue, files and epilogue.
func (p *Project) Paths() []string {
	var out []string
	if p.HasMainFile() {
		out = append(out, p.MainFile)
	}
	for _, pkg := range p.packages {
		if pkg.HasPrologue() {
			out = append(out, pkg.Prologue)
		}
		out = append(out, pkg.Files...)
		if pkg.HasEpilogue() {
			out = append(out, pkg.Epilogue)
		}
	}
	return out
}

// packageFor returns the package called name, creating it at the end of the
// ordering when it does not exist yet.
func (p *Project) packageFor(name string) *Package {
	if i, ok := p.index[name]; ok {
		return p.packages[i]
	}
	pkg := &Package{Name: name}
	p.index[name] = len(p.packages)
	p.packages = append(p.packages, pkg)
	return pkg
}

// Build classifies files, all expected below root, into a Project.
//
// Files without the .js extension are skipped. When files exist directly in
// root but none of them is the main file, a MainFileMissing warning is
// returned alongside the project.
func Build(root string, files []string, names Names) (*Project, []warning.Warning, error) {
	sep := string(filepath.Separator)
	root = strings.TrimSuffix(filepath.Clean(root), sep)
	proj := New(root)

	rootHasOthers := false
	for _, f := range files {
		if filepath.Ext(f) != Extension {
			continue
		}
		if !strings.HasPrefix(f, root+sep) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotUnderRoot, f)
		}

		rel := f[len(root):]
		depth := strings.Count(rel, sep)
		base := filepath.Base(f)

		switch {
		case depth == 1:
			if base == names.Main {
				proj.MainFile = f
			} else {
				rootHasOthers = true
			}
		case depth > 1:
			segment, _, _ := strings.Cut(rel[len(sep):], sep)
			pkg := proj.packageFor(jsname.Sanitize(segment))
			switch base {
			case names.Prologue:
				pkg.Prologue = f
			case names.Epilogue:
				pkg.Epilogue = f
			default:
				pkg.Files = append(pkg.Files, f)
			}
		default:
			return nil, nil, fmt.Errorf("%w: %s", ErrNotUnderRoot, f)
		}
	}

	var collector warning.Collector
	if rootHasOthers && !proj.HasMainFile() {
		collector.Add(warning.MainFileMissing, "")
	}
	return proj, collector.Warnings(), nil
}
