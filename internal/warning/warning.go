// SPDX-License-Identifier: MPL-2.0

// Package warning collects non-fatal problems found while packing a project.
package warning

import (
	"fmt"
	"strings"
)

// Kind identifies a warning. At most one warning of each kind is kept.
type Kind int

const (
	// MainFileNotReferenced means the internal name never appears in the main file.
	// Detail holds the internal name.
	MainFileNotReferenced Kind = iota + 1
	// MainFileMissing means src holds loose files but none of them is the main file.
	MainFileMissing
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case MainFileNotReferenced:
		return "main-file-not-referenced"
	case MainFileMissing:
		return "main-file-missing"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Warning is a single collected warning.
type Warning struct {
	Kind   Kind
	Detail string
}

// Message returns the human readable text of the warning, without prefix.
func (w Warning) Message() string {
	switch w.Kind {
	case MainFileNotReferenced:
		return fmt.Sprintf("internal_name %q missing in the main file.", w.Detail)
	case MainFileMissing:
		return "Main file not found but the project src directory contains files."
	default:
		if w.Detail != "" {
			return w.Detail
		}
		return w.Kind.String()
	}
}

// String renders the warning as a single line.
func (w Warning) String() string {
	return "[WARNING] " + w.Message()
}

// Collector accumulates warnings in first-seen order.
// The zero value is ready to use.
type Collector struct {
	warnings []Warning
}

// Add records a warning unless one of the same kind is already present.
func (c *Collector) Add(kind Kind, detail string) {
	for _, w := range c.warnings {
		if w.Kind == kind {
			return
		}
	}
	c.warnings = append(c.warnings, Warning{Kind: kind, Detail: detail})
}

// Merge adds every warning of ws, keeping the per-kind rule.
func (c *Collector) Merge(ws []Warning) {
	for _, w := range ws {
		c.Add(w.Kind, w.Detail)
	}
}

// Len returns the number of stored warnings.
func (c *Collector) Len() int {
	return len(c.warnings)
}

// Warnings returns a copy of the stored warnings.
func (c *Collector) Warnings() []Warning {
	if len(c.warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Render returns one line per warning, each terminated by a newline.
// An empty collector renders as the empty string.
func (c *Collector) Render() string {
	return Render(c.warnings)
}

// Render formats ws the way Collector.Render does.
func Render(ws []Warning) string {
	var sb strings.Builder
	for _, w := range ws {
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
