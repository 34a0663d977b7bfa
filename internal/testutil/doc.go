// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include file tree setup (WriteTree, CopyTree, MustWriteFile),
// directory operations (MustChdir, MustMkdirAll, ListDir), and resource cleanup
// (MustClose, MustRemoveAll).
package testutil
