// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package fold produces comparison keys from arbitrary Unicode strings.
//
// # Usage
//
// Keys are used to match loosely-typed identifiers coming from the backend
// (e.g., "Administrativo", "administrativo ", "ADMINISTRATIVO") against the
// closed set of values the gate understands.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key converts s into a case-insensitive, accent-insensitive comparison key.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Applies Unicode case folding.
// 4. Drops whitespace, hyphens and underscores.
func Key(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Case fold
	result = cases.Fold().String(result)

	// 3. Strip separators
	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, result)

	return result
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
