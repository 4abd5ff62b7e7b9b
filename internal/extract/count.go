// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrCaseCount reports that the number of new cases in a paragraph could
// not be determined. Case splitting must not run without a count.
var ErrCaseCount = errors.New("case count undetermined")

// caseCountRe captures the word right before "laboratory-confirmed",
// skipping an optional "new".
var caseCountRe = regexp.MustCompile(`(\w+) (?:new )?laboratory[- ]confirmed`)

var spelledCounts = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
}

// ResolveCaseCount returns how many new cases a strain paragraph reports.
// The count is a digit string or a spelled-out number from "one" to "six";
// anything else, or a value outside 1..max, wraps ErrCaseCount.
func ResolveCaseCount(paragraph string, max int) (int, error) {
	m := caseCountRe.FindStringSubmatch(paragraph)
	if m == nil {
		return 0, fmt.Errorf("%w: no \"laboratory-confirmed\" phrase", ErrCaseCount)
	}
	word := strings.ToLower(m[1])

	n, ok := spelledCounts[word]
	if !ok {
		v, err := strconv.Atoi(word)
		if err != nil {
			return 0, fmt.Errorf("%w: unrecognized count %q", ErrCaseCount, m[1])
		}
		n = v
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("%w: count %d outside 1..%d", ErrCaseCount, n, max)
	}
	return n, nil
}
