// SPDX-License-Identifier: MPL-2.0

package packer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"packjs-cli/internal/assemble"
	"packjs-cli/internal/config"
	"packjs-cli/internal/issue"
	"packjs-cli/internal/project"
	"packjs-cli/internal/scan"
	"packjs-cli/internal/warning"
	"packjs-cli/internal/writer"
)

const (
	// SourceDir holds the sources of a project.
	SourceDir = "src"
	// OutputDir receives the packed file.
	OutputDir = "bin"
)

// Outcomes of a packing pass.
const (
	OutcomePacked Outcome = iota + 1
	// OutcomeAborted means the user declined to overwrite the output file.
	OutcomeAborted
	// OutcomePreviewed means the bundle was printed instead of written.
	OutcomePreviewed
)

// Modes of a packing pass.
const (
	ModeWrite Mode = iota
	// ModeDryRun prints the bundle.
	ModeDryRun
	// ModeDiff prints a unified diff against the current output file.
	ModeDiff
)

var (
	// ErrProjectPath is returned when the project directory does not exist or is not a directory.
	ErrProjectPath = errors.New("invalid project path")
	// ErrProjectStructure is returned when the project has no src directory.
	ErrProjectStructure = errors.New(`incorrect project structure: missing "src" directory`)
)

type (
	// Outcome tells how a pass ended when it did not fail.
	Outcome int

	// Mode selects what a pass does with the assembled bundle.
	Mode int

	// Request describes one packing pass.
	Request struct {
		// ProjectDir defaults to the working directory.
		ProjectDir string
		// ConfigFile selects a config file other than <project>/config.toml.
		ConfigFile string
		// NoConfig skips config files entirely.
		NoConfig bool
		// Flags carries command-line overrides of config values.
		Flags *pflag.FlagSet
		// Force overwrites an existing output file without asking.
		Force bool
		Mode  Mode

		// Confirmer is asked before an existing output file is replaced.
		// A nil Confirmer declines.
		Confirmer writer.Confirmer
		// Out receives the run report. Defaults to io.Discard.
		Out io.Writer
		// Preview receives the dry-run bundle or the diff. Defaults to Out.
		Preview io.Writer
		// Logger receives progress lines. Defaults to a discarding logger.
		Logger *log.Logger
		// Provider loads the configuration. Defaults to config.NewProvider().
		Provider config.Provider
	}

	// Result describes a finished pass.
	Result struct {
		Outcome     Outcome
		ProjectDir  string
		ProjectName string
		Config      *config.Config
		ConfigPath  string
		ConfigFound bool
		// OutputPath is bin/<output_file> inside the project.
		OutputPath string
		// Files counts package files, prologues and epilogues.
		Files    int
		Packages []assemble.PackageStat
		Warnings []warning.Warning
		// Bundle is the assembled text in preview modes.
		Bundle string
		// Diff is the unified diff in ModeDiff; empty when nothing changed.
		Diff string
	}

	declined struct{}
)

// Confirm implements writer.Confirmer by always declining.
func (declined) Confirm(string, string) (bool, error) { return false, nil }

// NewLogger returns the progress logger used by the CLI.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "packjs"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Pack runs a packing pass.
func Pack(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req = withDefaults(req)

	projectDir, err := resolveProjectDir(req.ProjectDir)
	if err != nil {
		return nil, err
	}

	loaded, err := req.Provider.Load(ctx, config.LoadOptions{
		ProjectDir:     projectDir,
		ConfigFilePath: req.ConfigFile,
		NoConfigFile:   req.NoConfig,
		Flags:          req.Flags,
	})
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	res := &Result{
		ProjectDir:  projectDir,
		ProjectName: filepath.Base(projectDir),
		Config:      cfg,
		ConfigPath:  loaded.Path,
		ConfigFound: loaded.Found,
		OutputPath:  filepath.Join(projectDir, OutputDir, cfg.OutputFile),
	}
	printHeader(req.Out, res, loaded.Skipped)

	srcDir := filepath.Join(projectDir, SourceDir)
	if info, statErr := os.Stat(srcDir); statErr != nil || !info.IsDir() {
		return nil, issue.NewErrorContext().
			WithOperation("pack project").
			WithResource(srcDir).
			WithSuggestion(`Create the "src" directory`).
			WithSuggestion("Scaffold a new project with 'packjs create <dir>'").
			WithIssue(issue.ProjectStructureId).
			Wrap(ErrProjectStructure).
			BuildError()
	}

	files, err := scan.Files(srcDir, cfg.Ignore)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("scan source directory").
			WithResource(srcDir).
			WithSuggestion("Check the permissions of the source directories").
			WithSuggestion("Check the ignore patterns").
			WithIssue(issue.ScanFailedId).
			Wrap(err).
			BuildError()
	}
	req.Logger.Debug("scanned source directory", "dir", srcDir, "files", len(files))

	proj, buildWarnings, err := project.Build(srcDir, files, project.Names{
		Main:     cfg.MainFile,
		Prologue: cfg.PackageStartFile,
		Epilogue: cfg.PackageEndFile,
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("classify source files").
			WithResource(srcDir).
			WithIssue(issue.ProjectStructureId).
			Wrap(err).
			BuildError()
	}

	opts := assemble.Options{
		InternalName: cfg.InternalName,
		ExternalName: cfg.ExternalName,
		OnPackage: func(s assemble.PackageStat) {
			req.Logger.Info(`Packing "` + s.Name + `" package... (` + strconv.Itoa(s.Files) + ` files)`)
		},
	}
	read := contextReader(ctx)

	if req.Mode != ModeWrite {
		return preview(req, res, proj, opts, read, buildWarnings)
	}

	w, err := writer.Open(filepath.Join(projectDir, OutputDir), res.OutputPath)
	if err != nil {
		return nil, writerError(err, res.OutputPath)
	}
	defer w.Discard()

	proceed, err := w.ConfirmOverwrite(req.Force, req.Confirmer)
	if err != nil {
		req.Logger.Debug("overwrite prompt failed", "error", err)
	}
	if !proceed {
		res.Outcome = OutcomeAborted
		return res, nil
	}

	asm, err := assemble.Run(proj, opts, read, w)
	if err != nil {
		return nil, assembleError(err)
	}
	if err := w.Commit(); err != nil {
		return nil, writerError(err, res.OutputPath)
	}

	finish(res, asm, buildWarnings)
	res.Outcome = OutcomePacked
	printSummary(req.Out, res)
	return res, nil
}

func withDefaults(req Request) Request {
	if req.Out == nil {
		req.Out = io.Discard
	}
	if req.Preview == nil {
		req.Preview = req.Out
	}
	if req.Logger == nil {
		req.Logger = log.New(io.Discard)
	}
	if req.Provider == nil {
		req.Provider = config.NewProvider()
	}
	if req.Confirmer == nil {
		req.Confirmer = declined{}
	}
	return req
}

func resolveProjectDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", projectPathError(dir, err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", projectPathError(dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", projectPathError(dir, err)
	}
	if !info.IsDir() {
		return "", projectPathError(dir, errors.New("not a directory"))
	}
	return abs, nil
}

func projectPathError(dir string, cause error) error {
	return issue.NewErrorContext().
		WithOperation("resolve project directory").
		WithResource(dir).
		WithSuggestion("Check the path passed with -d").
		WithIssue(issue.ProjectPathInvalidId).
		Wrap(fmt.Errorf("%w: %w", ErrProjectPath, cause)).
		BuildError()
}

// contextReader stops reading source files once ctx is done.
func contextReader(ctx context.Context) assemble.ReadFunc {
	return func(path string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return assemble.ReadFile(path)
	}
}

func finish(res *Result, asm assemble.Result, buildWarnings []warning.Warning) {
	var warnings warning.Collector
	warnings.Merge(buildWarnings)
	warnings.Merge(asm.Warnings)

	res.Files = asm.Files
	res.Packages = asm.Packages
	res.Warnings = warnings.Warnings()
}

func assembleError(err error) error {
	ctx := issue.NewErrorContext().Wrap(err)
	switch {
	case errors.Is(err, assemble.ErrMainFileRead):
		ctx.WithOperation("read main file").
			WithSuggestion("Check the permissions of the main file").
			WithIssue(issue.MainFileReadFailedId)
	case errors.Is(err, assemble.ErrSourceRead):
		ctx.WithOperation("read source file").
			WithSuggestion("Check the permissions of the file named above").
			WithIssue(issue.SourceReadFailedId)
	case errors.Is(err, writer.ErrTempWrite):
		ctx.WithOperation("stage output").
			WithSuggestion("Check free disk space").
			WithIssue(issue.TempFileFailedId)
	default:
		ctx.WithOperation("pack project")
	}
	return ctx.BuildError()
}

func writerError(err error, outputPath string) error {
	ctx := issue.NewErrorContext().WithResource(outputPath).Wrap(err)
	switch {
	case errors.Is(err, writer.ErrTargetIsFile), errors.Is(err, writer.ErrTargetCreate):
		ctx.WithOperation(`prepare "bin" directory`).
			WithSuggestion(`Remove or rename the file named "bin"`).
			WithSuggestion("Check the permissions of the project directory").
			WithIssue(issue.OutputDirInvalidId)
	case errors.Is(err, writer.ErrTempCreate), errors.Is(err, writer.ErrTempWrite):
		ctx.WithOperation("stage output").
			WithSuggestion(`Check the permissions of the "bin" directory`).
			WithIssue(issue.TempFileFailedId)
	default:
		ctx.WithOperation("write output file").
			WithSuggestion("Check that the output file is writable").
			WithIssue(issue.OutputWriteFailedId)
	}
	return ctx.BuildError()
}

func printHeader(out io.Writer, res *Result, skipped bool) {
	detail := ""
	switch {
	case skipped:
		detail = " [SKIPPED]"
	case !res.ConfigFound:
		detail = " [NOT FOUND!]"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project directory: %s\n", res.ProjectDir)
	fmt.Fprintf(&sb, "Configuration file%s: %s\n", detail, res.ConfigPath)
	sb.WriteString("Settings used:\n")
	for _, s := range res.Config.Settings() {
		fmt.Fprintf(&sb, "\t%s = %s\n", s.Key, s.Value)
	}
	if len(res.Config.Ignore) > 0 {
		fmt.Fprintf(&sb, "\t%s = %s\n", config.KeyIgnore, strings.Join(res.Config.Ignore, ", "))
	}
	sb.WriteString("\n")
	_, _ = io.WriteString(out, sb.String())
}

func printSummary(out io.Writer, res *Result) {
	_, _ = fmt.Fprintf(out, "%s\n%s\n", warning.Render(res.Warnings), SuccessMessage(res))
}

// SuccessMessage is the closing line of a successful pass.
func SuccessMessage(res *Result) string {
	return `Project "` + res.ProjectName + `" successfully packed! (` + strconv.Itoa(res.Files) + ` files)`
}
