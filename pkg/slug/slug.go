// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Published metadata links to "<site>/comics/<slug>". Comics normally carry
// a stored slug; [From] derives one from the title when they do not.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps generated slugs so URLs stay readable.
const MaxLength = 80

var (
	// nonAlphanumeric matches any run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD and removes combining marks (é → e).
// 2. Lowercases and replaces every non [a-z0-9] run with one hyphen.
// 3. Trims hyphens and cuts at [MaxLength] on a word boundary.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = nonAlphanumeric.ReplaceAllString(strings.ToLower(result), "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = result[:MaxLength]
		if cut := strings.LastIndex(result, "-"); cut > 0 {
			result = result[:cut]
		}
	}

	return result
}

// Or returns existing when it is non-blank, otherwise a slug derived from title.
func Or(existing, title string) string {
	if s := strings.TrimSpace(existing); s != "" {
		return s
	}
	return From(title)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
