// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"packjs-cli/internal/issue"
	"packjs-cli/internal/scaffold"

	"github.com/spf13/cobra"
)

func newCreateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <directory>",
		Short: "Create an empty project",
		Long: `Create an empty packjs project.

<directory> can be relative or absolute. It is created when missing and must
be empty otherwise. The new project contains src/, bin/, a commented
config.toml and a starter src/main.js.`,
		Example: `  packjs create ./myproject
  packjs create .`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(app, args[0])
		},
	}
}

func runCreate(app *App, dir string) error {
	res, err := scaffold.Create(dir)
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("create project").
			WithResource(dir).
			WithIssue(issue.CreateProjectFailedId).
			Wrap(err)
		switch {
		case errors.Is(err, scaffold.ErrNotEmpty):
			ctx.WithSuggestion("Please choose an empty directory or one that doesn't exist")
		case errors.Is(err, scaffold.ErrIsFile):
			ctx.WithSuggestion("Pass a directory, not a file")
		default:
			ctx.WithSuggestion("Check the permissions of the parent directory")
		}
		return ctx.BuildError()
	}

	if res.DirCreated {
		fmt.Fprintf(app.stdout, "Creating project folder %s\n", CmdStyle.Render(res.Dir))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(app.stdout, "%s %v\n", WarningStyle.Render("Warning:"), w)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(The file is optional)"))
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s PackJS has successfully created an empty project!\n", SuccessStyle.Render("✓"))
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintf(app.stdout, "  1. Add packages as directories below %s\n", CmdStyle.Render("src/"))
	fmt.Fprintf(app.stdout, "  2. Run %s\n", CmdStyle.Render("packjs -d "+dir))
	return nil
}
