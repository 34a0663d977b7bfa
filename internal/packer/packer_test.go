// SPDX-License-Identifier: MPL-2.0

package packer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packjs-cli/internal/assemble"
	"packjs-cli/internal/config"
	"packjs-cli/internal/issue"
	"packjs-cli/internal/testutil"
	"packjs-cli/internal/warning"
	"packjs-cli/internal/writer"
)

// answer is a Confirmer with a fixed reply that records every question.
type answer struct {
	yes    bool
	err    error
	titles []string
}

func (a *answer) Confirm(title, _ string) (bool, error) {
	a.titles = append(a.titles, title)
	return a.yes, a.err
}

// helloProject copies the bundled sample into a fresh "hello" directory.
func helloProject(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "hello")
	testutil.CopyTree(t, filepath.Join("testdata", "hello"), dir)
	return dir
}

func golden(t *testing.T) string {
	t.Helper()
	return testutil.MustReadFile(t, filepath.Join("testdata", "hello.golden.js"))
}

func requireIssue(t *testing.T, err error, id issue.Id) {
	t.Helper()
	var ae *issue.ActionableError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, id, ae.IssueId)
}

func requireNoLeftovers(t *testing.T, binDir string) {
	t.Helper()
	left, err := writer.Leftovers(binDir)
	require.NoError(t, err)
	assert.Empty(t, left, "staging files left behind")
}

func TestPack_HelloGolden(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	var out, logs bytes.Buffer

	res, err := Pack(context.Background(), Request{
		ProjectDir: dir,
		Out:        &out,
		Logger:     log.New(&logs),
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomePacked, res.Outcome)
	assert.Equal(t, 5, res.Files)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []assemble.PackageStat{{Name: "goodbye", Files: 1}, {Name: "hello", Files: 4}}, res.Packages)
	assert.Equal(t, filepath.Join(dir, "bin", "hello.js"), res.OutputPath)
	assert.Equal(t, golden(t), testutil.MustReadFile(t, res.OutputPath))
	requireNoLeftovers(t, filepath.Join(dir, "bin"))

	report := out.String()
	assert.Contains(t, report, "Project directory: "+dir+"\n")
	assert.Contains(t, report, "Configuration file [NOT FOUND!]: "+filepath.Join(dir, "config.toml")+"\n")
	assert.Contains(t, report, "Settings used:\n\tinternal_name = main\n\texternal_name = hello\n")
	assert.Contains(t, report, "\toutput_file = hello.js\n")
	assert.True(t, strings.HasSuffix(report, "\n"+`Project "hello" successfully packed! (5 files)`+"\n"), report)

	assert.Contains(t, logs.String(), `Packing "goodbye" package... (1 files)`)
	assert.Contains(t, logs.String(), `Packing "hello" package... (4 files)`)
}

func TestPack_MainFileNotReferenced(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "app")
	testutil.WriteTree(t, dir, map[string]string{
		"src/main.js":     "var main=function(){};",
		"src/pkgA/one.js": "var x=1;",
	})
	var out bytes.Buffer

	res, err := Pack(context.Background(), Request{ProjectDir: dir, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Files)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, warning.MainFileNotReferenced, res.Warnings[0].Kind)
	assert.Contains(t, out.String(), `[WARNING] internal_name "main" missing in the main file.`+"\n")

	packed := testutil.MustReadFile(t, filepath.Join(dir, "bin", "app.js"))
	assert.Contains(t, packed, "var main=function(){};\nfunction _pkgA() {\n")
	assert.Contains(t, packed, "\nmain.pkgA = pkgA;\n\nwindow.app = main;\n")
}

func TestPack_MainFileMissing(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "app")
	testutil.WriteTree(t, dir, map[string]string{
		"src/util.js":  "u",
		"src/other.js": "o",
	})

	res, err := Pack(context.Background(), Request{ProjectDir: dir})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, warning.MainFileMissing, res.Warnings[0].Kind)
	assert.Equal(t, 0, res.Files)
}

func TestPack_SourceReadFailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "app")
	testutil.WriteTree(t, dir, map[string]string{
		"src/p/a.js": "A",
		"src/p/c.js": "C",
		"bin/":       "",
	})
	if err := os.Symlink(filepath.Join(dir, "nowhere.js"), filepath.Join(dir, "src", "p", "b.js")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := Pack(context.Background(), Request{ProjectDir: dir})
	require.ErrorIs(t, err, assemble.ErrSourceRead)
	requireIssue(t, err, issue.SourceReadFailedId)
	assert.Contains(t, err.Error(), filepath.Join(dir, "src", "p", "b.js"))

	assert.Empty(t, testutil.ListDir(t, filepath.Join(dir, "bin")))
}

func TestPack_Overwrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		force     bool
		confirmer *answer
		wantAsked bool
		wantOut   Outcome
		wantFile  func(t *testing.T) string
	}{
		{
			name:      "declined keeps the existing file",
			confirmer: &answer{yes: false},
			wantAsked: true,
			wantOut:   OutcomeAborted,
			wantFile:  func(*testing.T) string { return "OLD" },
		},
		{
			name:      "prompt error keeps the existing file",
			confirmer: &answer{err: errors.New("user aborted")},
			wantAsked: true,
			wantOut:   OutcomeAborted,
			wantFile:  func(*testing.T) string { return "OLD" },
		},
		{
			name:      "accepted replaces the file",
			confirmer: &answer{yes: true},
			wantAsked: true,
			wantOut:   OutcomePacked,
			wantFile:  golden,
		},
		{
			name:      "force skips the prompt",
			force:     true,
			confirmer: &answer{},
			wantOut:   OutcomePacked,
			wantFile:  golden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := helloProject(t)
			output := filepath.Join(dir, "bin", "hello.js")
			testutil.MustWriteFile(t, output, "OLD")

			res, err := Pack(context.Background(), Request{
				ProjectDir: dir,
				Force:      tt.force,
				Confirmer:  tt.confirmer,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantOut, res.Outcome)
			assert.Equal(t, tt.wantFile(t), testutil.MustReadFile(t, output))
			requireNoLeftovers(t, filepath.Join(dir, "bin"))

			if tt.wantAsked {
				require.Len(t, tt.confirmer.titles, 1)
				assert.Equal(t, `Output file "`+output+`" already exists.`, tt.confirmer.titles[0])
			} else {
				assert.Empty(t, tt.confirmer.titles)
			}
		})
	}
}

func TestPack_NilConfirmerDeclines(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	output := filepath.Join(dir, "bin", "hello.js")
	testutil.MustWriteFile(t, output, "OLD")

	res, err := Pack(context.Background(), Request{ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAborted, res.Outcome)
	assert.Equal(t, "OLD", testutil.MustReadFile(t, output))
}

func TestPack_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T) Request
		wantErr error
		wantId  issue.Id
	}{
		{
			name: "missing project directory",
			setup: func(t *testing.T) Request {
				return Request{ProjectDir: filepath.Join(t.TempDir(), "missing")}
			},
			wantErr: ErrProjectPath,
			wantId:  issue.ProjectPathInvalidId,
		},
		{
			name: "project path is a file",
			setup: func(t *testing.T) Request {
				path := filepath.Join(t.TempDir(), "file")
				testutil.MustWriteFile(t, path, "x")
				return Request{ProjectDir: path}
			},
			wantErr: ErrProjectPath,
			wantId:  issue.ProjectPathInvalidId,
		},
		{
			name: "missing src",
			setup: func(t *testing.T) Request {
				return Request{ProjectDir: t.TempDir()}
			},
			wantErr: ErrProjectStructure,
			wantId:  issue.ProjectStructureId,
		},
		{
			name: "bin is a file",
			setup: func(t *testing.T) Request {
				dir := helloProject(t)
				testutil.MustWriteFile(t, filepath.Join(dir, "bin"), "not a directory")
				return Request{ProjectDir: dir}
			},
			wantErr: writer.ErrTargetIsFile,
			wantId:  issue.OutputDirInvalidId,
		},
		{
			name: "explicit config file missing",
			setup: func(t *testing.T) Request {
				return Request{ProjectDir: helloProject(t), ConfigFile: filepath.Join(t.TempDir(), "nope.toml")}
			},
			wantErr: config.ErrConfigPath,
			wantId:  issue.ConfigNotFoundId,
		},
		{
			name: "config file with invalid name",
			setup: func(t *testing.T) Request {
				dir := helloProject(t)
				testutil.MustWriteFile(t, filepath.Join(dir, "config.toml"), "internal_name = \"1abc\"\n")
				return Request{ProjectDir: dir}
			},
			wantErr: config.ErrConfigParse,
			wantId:  issue.ConfigParseErrorId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Pack(context.Background(), tt.setup(t))
			require.ErrorIs(t, err, tt.wantErr)
			requireIssue(t, err, tt.wantId)
		})
	}
}

func TestPack_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	testutil.MustWriteFile(t, filepath.Join(dir, "config.toml"), "external_name = \"FromFile\"\noutput_file = \"lib.js\"\n")

	fs := pflag.NewFlagSet("packjs", pflag.ContinueOnError)
	fs.String("external-name", "", "")
	fs.String("output-file", "", "")
	require.NoError(t, fs.Parse([]string{"--external-name", "FromFlag"}))

	var out bytes.Buffer
	res, err := Pack(context.Background(), Request{ProjectDir: dir, Flags: fs, Out: &out})
	require.NoError(t, err)

	assert.True(t, res.ConfigFound)
	assert.Equal(t, "FromFlag", res.Config.ExternalName)
	assert.Equal(t, "lib.js", res.Config.OutputFile)
	assert.Contains(t, testutil.MustReadFile(t, filepath.Join(dir, "bin", "lib.js")), "\nwindow.FromFlag = main;\n")
	assert.Contains(t, out.String(), "Configuration file: "+filepath.Join(dir, "config.toml")+"\n")
}

func TestPack_NoConfig(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	testutil.MustWriteFile(t, filepath.Join(dir, "config.toml"), "output_file = \"lib.js\"\n")

	var out bytes.Buffer
	res, err := Pack(context.Background(), Request{ProjectDir: dir, NoConfig: true, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, "hello.js", res.Config.OutputFile)
	assert.Contains(t, out.String(), "Configuration file [SKIPPED]: ")
}

func TestPack_IgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	testutil.MustWriteFile(t, filepath.Join(dir, "config.toml"), "ignore = [\"goodbye/**\"]\n")

	var out bytes.Buffer
	res, err := Pack(context.Background(), Request{ProjectDir: dir, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, []assemble.PackageStat{{Name: "hello", Files: 4}}, res.Packages)
	assert.NotContains(t, testutil.MustReadFile(t, res.OutputPath), "_goodbye")
	assert.Contains(t, out.String(), "\tignore = goodbye/**\n")
}

func TestPack_DryRun(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	var out, preview bytes.Buffer

	res, err := Pack(context.Background(), Request{ProjectDir: dir, Mode: ModeDryRun, Out: &out, Preview: &preview})
	require.NoError(t, err)

	assert.Equal(t, OutcomePreviewed, res.Outcome)
	assert.Equal(t, golden(t), preview.String())
	assert.Equal(t, golden(t), res.Bundle)
	assert.NoDirExists(t, filepath.Join(dir, "bin"))
	assert.NotContains(t, out.String(), "successfully packed")
}

func TestPack_Diff(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	output := filepath.Join(dir, "bin", "hello.js")
	stale := strings.Replace(golden(t), "window.hello = main;", "window.hi = main;", 1)
	testutil.MustWriteFile(t, output, stale)

	var out, preview bytes.Buffer
	res, err := Pack(context.Background(), Request{ProjectDir: dir, Mode: ModeDiff, Out: &out, Preview: &preview})
	require.NoError(t, err)

	assert.Equal(t, OutcomePreviewed, res.Outcome)
	assert.Equal(t, res.Diff, preview.String())
	assert.Contains(t, res.Diff, "--- a/hello.js\n+++ b/hello.js\n")
	assert.Contains(t, res.Diff, "-window.hi = main;\n+window.hello = main;\n")
	assert.Equal(t, stale, testutil.MustReadFile(t, output), "diff must not touch the output")
	requireNoLeftovers(t, filepath.Join(dir, "bin"))
}

func TestPack_DiffUpToDate(t *testing.T) {
	t.Parallel()

	dir := helloProject(t)
	output := filepath.Join(dir, "bin", "hello.js")
	testutil.MustWriteFile(t, output, golden(t))

	var out, preview bytes.Buffer
	res, err := Pack(context.Background(), Request{ProjectDir: dir, Mode: ModeDiff, Out: &out, Preview: &preview})
	require.NoError(t, err)

	assert.Empty(t, res.Diff)
	assert.Empty(t, preview.String())
	assert.Contains(t, out.String(), output+" is up to date.\n")
}

func TestPack_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Pack(ctx, Request{ProjectDir: helloProject(t)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	got, err := Diff("", "a\nb\n", "x.js")
	require.NoError(t, err)
	assert.Equal(t, "--- a/x.js\n+++ b/x.js\n@@ -0,0 +1,2 @@\n+a\n+b\n", got)

	same, err := Diff("a\n", "a\n", "x.js")
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestSuccessMessage(t *testing.T) {
	t.Parallel()

	msg := SuccessMessage(&Result{ProjectName: "demo", Files: 12})
	assert.Equal(t, `Project "demo" successfully packed! (12 files)`, msg)
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb"))
	assert.Equal(t, []string{"\n"}, splitLines("\n"))
}
