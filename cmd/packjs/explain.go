// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"packjs-cli/internal/issue"

	"github.com/spf13/cobra"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string

	explainCmd := &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain an error and how to fix it",
		Long: `Explain an error and how to fix it.

Without an argument, lists the known issues. The issue names are the same
ones shown by failed runs in verbose mode.`,
		Example: `  packjs explain
  packjs explain config-parse`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return issue.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listIssues(app)
				return nil
			}
			return explainIssue(app, args[0], style)
		},
	}
	explainCmd.Flags().StringVar(&style, "style", "auto", "glamour style (auto, dark, light, notty)")
	return explainCmd
}

func listIssues(app *App) {
	fmt.Fprintln(app.stdout, TitleStyle.Render("Known issues"))
	fmt.Fprintln(app.stdout)
	for _, name := range issue.Names() {
		fmt.Fprintf(app.stdout, "  %s\n", CmdStyle.Render(name))
	}
	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "Run %s for details.\n", CmdStyle.Render("packjs explain <issue>"))
}

func explainIssue(app *App, name, style string) error {
	i, ok := issue.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown issue %q (known: %s)", name, strings.Join(issue.Names(), ", "))
	}
	rendered, err := i.Render(style)
	if err != nil {
		return fmt.Errorf("failed to render issue %q: %w", name, err)
	}
	fmt.Fprint(app.stdout, rendered)
	return nil
}
