// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package helpers contains small functions usable by any other
// package, both for testing or not.
package helpers

import "unicode"

// Capitalize turns the first letter of a string to its upper case version.
func Capitalize(str string) string {
	if len(str) == 0 {
		return ""
	}
	r := []rune(str)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Version contains the current version, overridden at link time.
var Version = "dev"
