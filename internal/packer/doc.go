// SPDX-License-Identifier: MPL-2.0

// Package packer runs one packing pass over a packjs project.
//
// A pass resolves the project directory and its configuration, scans src/,
// classifies the files into packages and streams the assembled bundle through
// a crash-safe writer into bin/. Dry-run and diff modes assemble into memory
// instead and leave bin/ untouched.
//
// Every fatal error is an *issue.ActionableError linked to an issue guide;
// the package sentinels stay reachable through errors.Is.
package packer
