// SPDX-License-Identifier: MPL-2.0

package packer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"packjs-cli/internal/assemble"
	"packjs-cli/internal/issue"
	"packjs-cli/internal/project"
	"packjs-cli/internal/warning"
)

// diffContext is the number of unchanged lines around each hunk.
const diffContext = 3

// preview assembles into memory and prints the bundle or its diff.
func preview(req Request, res *Result, proj *project.Project, opts assemble.Options, read assemble.ReadFunc, buildWarnings []warning.Warning) (*Result, error) {
	bundle, asm, err := assemble.String(proj, opts, read)
	if err != nil {
		return nil, assembleError(err)
	}
	finish(res, asm, buildWarnings)
	res.Bundle = bundle
	res.Outcome = OutcomePreviewed

	if req.Mode == ModeDryRun {
		_, _ = io.WriteString(req.Preview, bundle)
		_, _ = io.WriteString(req.Out, warning.Render(res.Warnings))
		return res, nil
	}

	current, err := os.ReadFile(res.OutputPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, issue.NewErrorContext().
			WithOperation("read current output").
			WithResource(res.OutputPath).
			WithIssue(issue.OutputWriteFailedId).
			Wrap(err).
			BuildError()
	}

	res.Diff, err = Diff(string(current), bundle, res.Config.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	if res.Diff == "" {
		_, _ = fmt.Fprintf(req.Out, "%s is up to date.\n", res.OutputPath)
	} else {
		_, _ = io.WriteString(req.Preview, res.Diff)
	}
	_, _ = io.WriteString(req.Out, warning.Render(res.Warnings))
	return res, nil
}

// Diff returns the unified diff turning current into next, labelled
// a/<name> and b/<name>. Identical inputs give the empty string.
func Diff(current, next, name string) (string, error) {
	if current == next {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(current),
		B:        splitLines(next),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  diffContext,
	})
}

// splitLines splits s after each newline. Unlike difflib.SplitLines it does
// not invent an empty last line, and it terminates an unterminated one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += "\n"
	return lines
}
