// Package textnorm canonicalizes free text so that user input, sheet titles
// and header labels can be compared without caring about case, accents or
// punctuation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, strips diacritics, drops every rune that is not a
// letter, digit, whitespace or parenthesis, and collapses whitespace.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '(', r == ')':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Contains reports whether the normalized form of s contains the normalized
// form of sub. An empty sub never matches.
func Contains(s, sub string) bool {
	ns := Normalize(sub)
	if ns == "" {
		return false
	}
	return strings.Contains(Normalize(s), ns)
}
