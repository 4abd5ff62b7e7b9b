// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// brokenHyphenRe matches a hyphen followed by a line break, as produced
	// when "year-old" or "laboratory-confirmed" wraps in the PDF layout.
	brokenHyphenRe = regexp.MustCompile(`-[ \t]*\r?\n\s*`)

	// whitespaceRe matches any run of whitespace, line breaks included.
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// foldHyphen maps the Unicode hyphen variants to ASCII '-' so the age and
// "laboratory-confirmed" patterns match regardless of the PDF font.
func foldHyphen(r rune) rune {
	switch r {
	case '\u2010', '\u2011', '\u2012', '\u2212':
		return '-'
	}
	return r
}

func isSoftHyphen(r rune) bool { return r == '\u00ad' }

// NormalizeText turns raw page text into one contiguous single-spaced
// string. Ligatures and no-break spaces are folded by NFKC, hyphens broken
// across lines are rejoined and every other line break becomes a space.
func NormalizeText(s string) string {
	t := transform.Chain(
		norm.NFKC,
		runes.Remove(runes.Predicate(isSoftHyphen)),
		runes.Map(foldHyphen),
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = brokenHyphenRe.ReplaceAllString(folded, "-")
	folded = whitespaceRe.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}
