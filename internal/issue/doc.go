// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Errors carry the failed operation, the resource involved, remediation hints and
// an optional link into a catalog of Markdown guides that 'packjs explain' renders.
package issue
