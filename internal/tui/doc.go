// SPDX-License-Identifier: MPL-2.0

// Package tui provides the interactive prompts of the packjs CLI.
//
// On a terminal the overwrite question is asked with a Bubble Tea model;
// otherwise a plain line prompt reads the answer from the input stream.
package tui
