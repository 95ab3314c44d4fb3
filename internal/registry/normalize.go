// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry queries the clinical-trial registry: it normalizes
// organization names, builds query URLs, executes them with bounded retries,
// decodes study payloads, and memoizes responses.
package registry

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// nonNameChars matches anything outside word characters, whitespace and hyphen.
	nonNameChars = regexp.MustCompile(`[^\w\s-]`)

	// corporateSuffixes matches the stoplist of corporate-suffix tokens as whole words.
	corporateSuffixes = regexp.MustCompile(`\b(inc|corp|ltd|llc|pharmaceuticals|pharma|therapeutics|biosciences|biotechnology)\b`)

	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes an organization name for comparison: lower-cased,
// punctuation stripped, corporate suffixes removed, whitespace collapsed.
// Normalize(Normalize(x)) == Normalize(x). An empty input yields "".
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	s := strings.Map(toASCIISpace, strings.ToLower(name))
	s = nonNameChars.ReplaceAllString(s, "")
	s = corporateSuffixes.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// toASCIISpace maps Unicode spaces (NBSP, vertical tab, BOM) to ' ' so they
// separate words instead of being stripped as punctuation.
func toASCIISpace(r rune) rune {
	if r != ' ' && (unicode.IsSpace(r) || r == '\ufeff') {
		return ' '
	}
	return r
}
