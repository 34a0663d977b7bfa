// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"packjs-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `packjs config` command tree. Settings are
// resolved exactly as a pack would resolve them, flags included.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect project configuration",
		Long: `Inspect project configuration.

Settings are resolved with the precedence flag > config file > default.
The config file is <dir>/config.toml unless -c or -x is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(cmd, app)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, res.Path)
			return nil
		},
	})

	return cfgCmd
}

func loadConfig(cmd *cobra.Command, app *App) (*config.Result, error) {
	dir := app.flags.dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid project directory %q: %w", dir, err)
	}
	return app.config.Load(cmd.Context(), config.LoadOptions{
		ProjectDir:     abs,
		ConfigFilePath: app.flags.config,
		NoConfigFile:   app.flags.noConfig,
		Flags:          cmd.Flags(),
	})
}

func showConfig(cmd *cobra.Command, app *App) error {
	res, err := loadConfig(cmd, app)
	if err != nil {
		return err
	}

	status := SuccessStyle.Render("(loaded)")
	switch {
	case res.Skipped:
		status = SubtitleStyle.Render("(skipped)")
	case !res.Found:
		status = WarningStyle.Render("(not found, using defaults)")
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Configuration"))
	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s %s %s\n", SubtitleStyle.Render("File:"), res.Path, status)
	fmt.Fprintln(app.stdout)
	for _, s := range res.Config.Settings() {
		fmt.Fprintf(app.stdout, "  %s = %s\n", CmdStyle.Render(s.Key), s.Value)
	}
	ignore := SubtitleStyle.Render("(none)")
	if len(res.Config.Ignore) > 0 {
		ignore = strings.Join(res.Config.Ignore, ", ")
	}
	fmt.Fprintf(app.stdout, "  %s = %s\n", CmdStyle.Render(config.KeyIgnore), ignore)
	return nil
}
