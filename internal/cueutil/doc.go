// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates decoded configuration data against embedded CUE
// schemas and formats CUE errors with JSON-path style locations.
package cueutil
