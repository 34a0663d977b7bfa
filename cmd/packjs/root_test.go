// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packjs-cli/internal/issue"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of watch mode.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// stubConfirmer answers every prompt with yes and counts the questions.
type stubConfirmer struct {
	yes   bool
	calls int
}

func (s *stubConfirmer) Confirm(string, string) (bool, error) {
	s.calls++
	return s.yes, nil
}

type cliRun struct {
	app    *App
	stdout *syncBuffer
	stderr *syncBuffer
}

// newCLI builds an App on in-memory streams. A nil confirmer reads answers
// from stdin.
func newCLI(stdin string, confirmer *stubConfirmer) *cliRun {
	run := &cliRun{stdout: &syncBuffer{}, stderr: &syncBuffer{}}
	deps := Dependencies{
		Stdin:  strings.NewReader(stdin),
		Stdout: run.stdout,
		Stderr: run.stderr,
	}
	if confirmer != nil {
		deps.Confirmer = confirmer
	}
	run.app = NewApp(deps)
	return run
}

func (r *cliRun) execute(ctx context.Context, args ...string) error {
	root := newRootCommand(r.app)
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "dev"

		got := getVersionString()
		want := "dev (built from source)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestRootCommand_Flags(t *testing.T) {
	t.Parallel()

	root := newRootCommand(newCLI("", nil).app)

	persistent := map[string]string{
		"dir":                "d",
		"config":             "c",
		"no-config":          "x",
		"internal-name":      "i",
		"external-name":      "e",
		"main-file":          "m",
		"output-file":        "o",
		"package-start-file": "p",
		"package-end-file":   "q",
		"ignore":             "",
		"verbose":            "",
	}
	for name, short := range persistent {
		f := root.PersistentFlags().Lookup(name)
		if assert.NotNil(t, f, "persistent flag --%s", name) {
			assert.Equal(t, short, f.Shorthand, "shorthand of --%s", name)
		}
	}

	local := map[string]string{
		"overwrite": "w",
		"dry-run":   "",
		"diff":      "",
		"watch":     "",
	}
	for name, short := range local {
		f := root.Flags().Lookup(name)
		if assert.NotNil(t, f, "flag --%s", name) {
			assert.Equal(t, short, f.Shorthand, "shorthand of --%s", name)
		}
	}

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"create", "config", "explain"}, names)
}

func TestRootCommand_ExclusiveModes(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"--dry-run", "--diff"},
		{"--dry-run", "--watch"},
		{"--diff", "--watch"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			t.Parallel()
			err := newCLI("", nil).execute(t.Context(), append(args, "-d", t.TempDir())...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "none of the others can be")
		})
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	t.Parallel()

	err := newCLI("", nil).execute(t.Context(), "extra")
	require.Error(t, err)
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	actionable := issue.NewErrorContext().
		WithOperation("resolve project directory").
		WithResource("./nope").
		WithSuggestion("Check the path passed with -d").
		WithIssue(issue.ProjectPathInvalidId).
		Wrap(errors.New("no such file or directory")).
		BuildError()

	tests := []struct {
		name     string
		verbose  bool
		err      error
		contains []string
		excludes []string
	}{
		{
			name:     "actionable",
			err:      actionable,
			contains: []string{"[ERROR]", "failed to resolve project directory: ./nope", "• Check the path passed with -d"},
			excludes: []string{"Error chain:", "Invalid project path"},
		},
		{
			name:     "actionable verbose renders the guide",
			verbose:  true,
			err:      actionable,
			contains: []string{"[ERROR]", "Error chain:", "Invalid project path"},
		},
		{
			name:     "wrapped actionable",
			err:      fmt.Errorf("pack: %w", actionable),
			contains: []string{"[ERROR]", "failed to resolve project directory"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"boom"},
			excludes: []string{"[ERROR]"},
		},
		{
			name:     "interrupted",
			err:      interrupted(context.Canceled),
			contains: []string{"Interrupted."},
			excludes: []string{"[ERROR]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newCLI("", nil).app
			app.flags.verbose = tt.verbose

			var buf bytes.Buffer
			app.handleError(&buf, fang.Styles{}, tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 3, exitCode(&ExitError{Code: 3}))
	assert.Equal(t, exitInterrupted, exitCode(fmt.Errorf("run: %w", interrupted(context.Canceled))))
}

func TestInterrupted(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")
	assert.Same(t, plain, interrupted(plain))

	var exitErr *ExitError
	err := interrupted(fmt.Errorf("read: %w", context.Canceled))
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, exitInterrupted, exitErr.Code)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	assert.Equal(t, "cause", (&ExitError{Code: 2, Err: cause}).Error())
	assert.Equal(t, "exit status 2", (&ExitError{Code: 2}).Error())
	assert.ErrorIs(t, &ExitError{Code: 2, Err: cause}, cause)
}
