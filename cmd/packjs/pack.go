// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"packjs-cli/internal/packer"

	"github.com/spf13/cobra"
)

// packRequest builds the packer request shared by single runs and watch mode.
func packRequest(cmd *cobra.Command, app *App, packFlags *packFlagValues) packer.Request {
	req := packer.Request{
		ProjectDir: app.flags.dir,
		ConfigFile: app.flags.config,
		NoConfig:   app.flags.noConfig,
		Flags:      cmd.Flags(),
		Force:      packFlags.overwrite,
		Confirmer:  app.confirmer,
		Out:        app.stdout,
		Logger:     packer.NewLogger(app.stderr, app.flags.verbose),
		Provider:   app.config,
	}
	switch {
	case packFlags.dryRun:
		req.Mode = packer.ModeDryRun
	case packFlags.diff:
		req.Mode = packer.ModeDiff
	}
	if req.Mode != packer.ModeWrite {
		// Keep stdout clean for the bundle or the diff.
		req.Out = app.stderr
		req.Preview = app.stdout
	}
	return req
}

// runPack packs the project once.
func runPack(cmd *cobra.Command, app *App, packFlags *packFlagValues) error {
	res, err := packer.Pack(cmd.Context(), packRequest(cmd, app, packFlags))
	if err != nil {
		return interrupted(err)
	}
	if res.Outcome == packer.OutcomeAborted {
		fmt.Fprintln(app.stdout, WarningStyle.Render("Aborted.")+" The output file was left untouched.")
	}
	return nil
}
