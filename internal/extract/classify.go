// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// noNewInfectionRe matches the summary phrase stating that nothing new was
// reported in the period.
var noNewInfectionRe = regexp.MustCompile(`(?i)no new human infections?`)

// ClassifyReport inspects the new-infections summary of a normalized report
// and returns independent flags: the "no new infections" phrase, and for
// every tracked strain whether its code is mentioned.
func (e *Extractor) ClassifyReport(text string) types.Classification {
	summary := Section(text, e.summaryOpen, e.summaryClose)

	var c types.Classification
	c.NoNewCases = noNewInfectionRe.MatchString(summary)
	for _, rule := range e.strains {
		if summary != "" && strings.Contains(summary, string(rule.code)) {
			c.Present = append(c.Present, rule.code)
		} else {
			c.Absent = append(c.Absent, rule.code)
		}
	}
	return c
}
