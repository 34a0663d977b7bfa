// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for packjs.
//
// The root command packs the project in the current (or -d) directory.
// Subcommands scaffold new projects, show the resolved configuration and
// explain the issues reported by failed runs.
package cmd
