// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"packjs-cli/internal/config"
	"packjs-cli/internal/packer"
	"packjs-cli/internal/watch"

	"github.com/spf13/cobra"
)

// runWatchMode packs the project once, then repacks with overwrite forced
// whenever a source file or the config file changes. It blocks until the
// context is cancelled (e.g., Ctrl+C).
func runWatchMode(cmd *cobra.Command, app *App, packFlags *packFlagValues) error {
	childFlags := *packFlags
	childFlags.watch = false
	childFlags.overwrite = true

	repack := func(ctx context.Context) (*packer.Result, error) {
		req := packRequest(cmd, app, &childFlags)
		return packer.Pack(ctx, req)
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial pack\n", CmdStyle.Render("→"))
	res, err := repack(cmd.Context())
	if err != nil {
		// The project directory itself must be valid to watch it.
		if errors.Is(err, context.Canceled) || errors.Is(err, packer.ErrProjectPath) {
			return interrupted(err)
		}
		fmt.Fprintf(app.stderr, "%s Initial pack failed: %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, app.flags.verbose))
	}

	root, cfgFile, ignore := watchTargets(app, cmd, res)
	patterns := []string{packer.SourceDir + "/**/*.js"}
	if cfgFile != "" {
		patterns = append(patterns, cfgFile)
	}

	w, err := watch.New(watch.Config{
		Root:     root,
		Patterns: patterns,
		Ignore:   ignore,
		Logger:   watch.NewLogger(app.stderr),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Repacking...\n", CmdStyle.Render("→"), len(changed))
			if _, packErr := repack(ctx); packErr != nil {
				if errors.Is(packErr, context.Canceled) {
					return nil
				}
				fmt.Fprintf(app.stderr, "%s Pack failed: %s\n", WarningStyle.Render("!"), formatErrorForDisplay(packErr, app.flags.verbose))
			}
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", CmdStyle.Render("→"))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", CmdStyle.Render("→"))
	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchTargets returns the project root, the config file relative to it
// (empty when it lies outside the project or config files are disabled) and
// the ignore patterns rebased onto the project root.
func watchTargets(app *App, cmd *cobra.Command, res *packer.Result) (root, cfgFile string, ignore []string) {
	if res != nil {
		root = res.ProjectDir
		for _, p := range res.Config.Ignore {
			ignore = append(ignore, packer.SourceDir+"/"+p)
		}
	} else {
		root = app.flags.dir
		if root == "" {
			root = "."
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		// The ignore flag still applies when the initial pack failed.
		if patterns, err := cmd.Flags().GetStringSlice(config.KeyIgnore); err == nil {
			for _, p := range patterns {
				ignore = append(ignore, packer.SourceDir+"/"+p)
			}
		}
	}

	if app.flags.noConfig {
		return root, "", ignore
	}
	path := app.flags.config
	if path == "" {
		path = config.DefaultPath(root)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return root, "", ignore
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return root, "", ignore
	}
	return root, filepath.ToSlash(rel), ignore
}
