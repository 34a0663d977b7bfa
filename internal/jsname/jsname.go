// SPDX-License-Identifier: MPL-2.0

// Package jsname turns arbitrary strings into bare JavaScript identifiers.
package jsname

// Placeholder replaces every byte that may not appear at its position.
const Placeholder = '_'

// Sanitize returns s with every byte that is not allowed in a JavaScript
// identifier replaced by Placeholder. The first byte must match [A-Za-z_$],
// the following ones [A-Za-z0-9_$]. The input is treated as raw bytes, so each
// byte of a multi-byte UTF-8 sequence is replaced on its own and the result
// has the same length as s.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	b := []byte(s)
	if !isStart(b[0]) {
		b[0] = Placeholder
	}
	for i := 1; i < len(b); i++ {
		if !isPart(b[i]) {
			b[i] = Placeholder
		}
	}
	return string(b)
}

// Valid reports whether s is non-empty and already a bare identifier.
func Valid(s string) bool {
	return s != "" && Sanitize(s) == s
}

func isStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isPart(c byte) bool {
	return isStart(c) || c >= '0' && c <= '9'
}
