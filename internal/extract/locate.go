// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

// FindNth returns the byte offset of the nth match of re in s. n counts
// from 1; a negative n counts from the end, so -1 is the last match. The
// boolean is false when s has fewer matches than requested or n is 0.
func FindNth(s string, re *regexp.Regexp, n int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	matches := re.FindAllStringIndex(s, -1)
	idx := n - 1
	if n < 0 {
		idx = len(matches) + n
	}
	if idx < 0 || idx >= len(matches) {
		return 0, false
	}
	return matches[idx][0], true
}

// Section returns the text from the first match of open up to the first
// match of close that follows it. An empty string means the section is not
// discussed: either anchor is missing.
func Section(text string, open, close *regexp.Regexp) string {
	start, ok := FindNth(text, open, 1)
	if !ok {
		return ""
	}
	rest := text[start:]
	end, ok := FindNth(rest, close, 1)
	if !ok {
		return ""
	}
	return rest[:end]
}
