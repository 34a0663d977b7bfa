// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"packjs-cli/internal/config"
	"packjs-cli/internal/issue"
	"packjs-cli/internal/tui"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// exitInterrupted is the conventional exit code after SIGINT.
const exitInterrupted = 130

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App wires the CLI to its IO streams and services. Every command handler
	// receives the same App.
	App struct {
		stdin     io.Reader
		stdout    io.Writer
		stderr    io.Writer
		confirmer tui.Confirmer
		config    config.Provider
		flags     rootFlagValues
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Confirmer answers the overwrite prompt. Defaults to tui.NewConfirmer
		// on Stdin and Stdout.
		Confirmer tui.Confirmer
		Config    config.Provider
	}

	// rootFlagValues holds the flags shared by the root command and its
	// subcommands.
	rootFlagValues struct {
		dir      string
		config   string
		noConfig bool
		verbose  bool
	}

	// packFlagValues holds the flags that only apply to packing.
	packFlagValues struct {
		overwrite bool
		dryRun    bool
		diff      bool
		watch     bool
	}
)

// NewApp builds an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		confirmer: deps.Confirmer,
		config:    deps.Config,
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.confirmer == nil {
		app.confirmer = tui.NewConfirmer(app.stdin, app.stdout)
	}
	if app.config == nil {
		app.config = config.NewProvider()
	}
	return app
}

func newRootCommand(app *App) *cobra.Command {
	packFlags := &packFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "packjs",
		Short: "Pack a JavaScript project into a single file",
		Long: TitleStyle.Render("packjs") + SubtitleStyle.Render(" - Pack a JavaScript project into a single file") + `

packjs reads the JavaScript files below src/, groups every first-level
directory into a package and writes one self-contained closure to
bin/<output_file>. The project object is published as a single global.

` + SubtitleStyle.Render("Project layout:") + `
  config.toml      Settings (optional)
  src/main.js      Main file, defines the project object
  src/<pkg>/*.js   Package files, _start.js and _end.js wrap each package
  bin/             Packed output

` + SubtitleStyle.Render("Examples:") + `
  packjs                    Pack the project in the current directory
  packjs -d ./app -w        Pack ./app, overwriting the output file
  packjs --diff             Show what a pack would change
  packjs --watch            Repack whenever a source file changes
  packjs create ./app       Scaffold a new project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if packFlags.watch {
				return runWatchMode(cmd, app, packFlags)
			}
			return runPack(cmd, app, packFlags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.flags.dir, "dir", "d", "", "project directory (default is the current directory)")
	pf.StringVarP(&app.flags.config, "config", "c", "", "config file (default is <dir>/config.toml)")
	pf.BoolVarP(&app.flags.noConfig, "no-config", "x", false, "ignore configuration files")
	pf.BoolVar(&app.flags.verbose, "verbose", false, "enable verbose output")
	pf.StringP("internal-name", "i", "", "variable holding the project object inside the closure")
	pf.StringP("external-name", "e", "", "global the project object is published as")
	pf.StringP("main-file", "m", "", "main file inside src/")
	pf.StringP("output-file", "o", "", "output file inside bin/")
	pf.StringP("package-start-file", "p", "", "file emitted at the top of each package")
	pf.StringP("package-end-file", "q", "", "file emitted at the bottom of each package")
	pf.StringSlice("ignore", nil, "doublestar pattern relative to src/ to leave out (repeatable)")

	f := rootCmd.Flags()
	f.BoolVarP(&packFlags.overwrite, "overwrite", "w", false, "overwrite the output file without asking")
	f.BoolVar(&packFlags.dryRun, "dry-run", false, "print the packed file instead of writing it")
	f.BoolVar(&packFlags.diff, "diff", false, "print a unified diff against the current output file")
	f.BoolVar(&packFlags.watch, "watch", false, "repack whenever a source file changes")
	rootCmd.MarkFlagsMutuallyExclusive("dry-run", "diff", "watch")

	rootCmd.AddCommand(newCreateCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newExplainCommand(app))

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

// handleError prints actionable errors as a single [ERROR] line, plus the
// issue guide in verbose mode. Anything else goes to fang's default handler.
func (app *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && errors.Is(exitErr.Err, context.Canceled) {
		_, _ = fmt.Fprintln(w, WarningStyle.Render("Interrupted."))
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	_, _ = fmt.Fprintln(w, ErrorStyle.Render("[ERROR]")+" "+formatErrorForDisplay(ae, app.flags.verbose))
	if !app.flags.verbose || ae.Issue() == nil {
		return
	}
	rendered, renderErr := ae.Issue().Render("auto")
	if renderErr != nil {
		return
	}
	_, _ = fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// interrupted turns a cancellation caused by SIGINT into an ExitError.
func interrupted(err error) error {
	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: exitInterrupted, Err: err}
	}
	return err
}
