// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-supplied display text such as author
// names and book titles.
//
// # Transformation Pipeline
//
// 1. Removes non-whitespace control characters (e.g. NUL, BEL).
// 2. Composes to NFC so that "é" typed as e + U+0301 equals the precomposed "é".
// 3. Trims leading and trailing whitespace.
//
// Case and inner spacing are preserved: two names that differ only in case
// are different names.
package textnorm

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// String returns the canonical form of s.
func String(s string) string {
	t := transform.Chain(runes.Remove(runes.Predicate(isInvisibleControl)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		// Malformed input; fall back to the untouched string.
		result = s
	}
	return strings.TrimSpace(result)
}

// Set canonicalizes every value and returns them sorted with duplicates removed.
func Set(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		result = append(result, String(value))
	}

	slices.Sort(result)
	return slices.Compact(result)
}

func isInvisibleControl(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}
