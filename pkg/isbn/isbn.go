// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package isbn validates International Standard Book Numbers.

Both forms are supported:

  - ISBN-10: nine digits plus a check character (0-9 or X), mod 11.
  - ISBN-13: twelve digits plus a check digit, alternating 1/3 weights, mod 10.

Hyphens and spaces are treated as group separators and ignored. Any other
character makes the value invalid.
*/
package isbn

import "strings"

// Compact strips group separators and upper-cases a trailing 'x'.
//
// It returns ok=false when the value contains characters that can never
// appear in an ISBN.
func Compact(value string) (compact string, ok bool) {
	var builder strings.Builder
	builder.Grow(len(value))

	for _, r := range strings.TrimSpace(value) {
		switch {
		case r == '-' || r == ' ':
			continue
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == 'x' || r == 'X':
			builder.WriteRune('X')
		default:
			return "", false
		}
	}

	return builder.String(), true
}

// Key returns the form two ISBNs are compared by: [Compact] output, or the
// trimmed value when it cannot be compacted. "978-3-16-148410-0" and
// "9783161484100" share a key.
func Key(value string) string {
	if compact, ok := Compact(value); ok {
		return compact
	}
	return strings.TrimSpace(value)
}

// Valid reports whether value is a well-formed ISBN-10 or ISBN-13.
func Valid(value string) bool {
	compact, ok := Compact(value)
	if !ok {
		return false
	}

	switch len(compact) {
	case 10:
		return validISBN10(compact)
	case 13:
		return validISBN13(compact)
	}
	return false
}

func validISBN10(digits string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		var value int
		switch c := digits[i]; {
		case c == 'X' && i == 9:
			value = 10
		case c >= '0' && c <= '9':
			value = int(c - '0')
		default:
			return false
		}
		sum += value * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(digits string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}
	return sum%10 == 0
}
