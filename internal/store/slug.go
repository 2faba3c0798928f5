// SPDX-License-Identifier: MIT

package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a model name into a filesystem-safe slug used in URLs
// and exported result files. Diacritics are stripped, everything that
// is not an ASCII letter or digit collapses into single dashes.
func Slugify(name string) string {
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	lastDash := true
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from decomposition, drop it
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "model"
	}
	return slug
}
