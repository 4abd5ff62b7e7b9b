// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

// agePhraseRe matches the unit part of an age phrase ("-year-old",
// " month old"). Each occurrence after the first opens a new case.
var agePhraseRe = regexp.MustCompile(`-?(?:year|month)[- ]old`)

// SplitCases partitions a paragraph describing n cases into n spans. The
// kth case (k >= 2) starts backoff bytes before the kth age phrase so the
// age digits open that case's span. This is a heuristic: it assumes one age
// phrase per case in document order. When the paragraph has fewer age
// phrases than cases, the remaining cases all receive the text from the
// last boundary found to the end, and complete is false.
func SplitCases(paragraph string, n, backoff int) (spans []string, complete bool) {
	if n <= 1 {
		return []string{paragraph}, true
	}

	phrases := agePhraseRe.FindAllStringIndex(paragraph, -1)
	bounds := []int{0}
	for k := 1; k < n && k < len(phrases); k++ {
		b := phrases[k][0] - backoff
		if prev := bounds[len(bounds)-1]; b < prev {
			b = prev
		}
		bounds = append(bounds, b)
	}

	spans = make([]string, n)
	last := bounds[len(bounds)-1]
	for i := range spans {
		switch {
		case i+1 < len(bounds):
			spans[i] = paragraph[bounds[i]:bounds[i+1]]
		case i < len(bounds):
			spans[i] = paragraph[bounds[i]:]
		default:
			spans[i] = paragraph[last:]
		}
	}
	return spans, len(bounds) == n
}
