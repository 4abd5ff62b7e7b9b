// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DateLayout is the canonical calendar-date layout used in every output.
const DateLayout = "2006-01-02"

// Strain is the code of a tracked influenza strain (e.g. "H5N1", "H7N9").
type Strain string

const (
	StrainH5N1 Strain = "H5N1"
	StrainH7N9 Strain = "H7N9"
)

// Report is one surveillance document after text extraction. Text is the
// normalized, contiguous text of all pages; Pages keeps the per-page text
// as returned by the document backend so the annex header can be located
// by page.
type Report struct {
	// Source identifies the document (download URL or local path).
	Source string `json:"source" yaml:"source"`

	// Date is the publication date parsed from the report header.
	Date time.Time `json:"date" yaml:"date"`

	// Text is the normalized text of the whole report.
	Text string `json:"-" yaml:"-"`

	// Pages holds the raw text of each page, zero-indexed.
	Pages []string `json:"-" yaml:"-"`
}

// DateString returns the report date in DateLayout.
func (r Report) DateString() string {
	return r.Date.Format(DateLayout)
}

// Classification is the set of flags the strain classifier reports for a
// report's "new infections" summary. The flags are independent: a report can
// state that there are no new infections of one strain while listing cases
// of another.
type Classification struct {
	// NoNewCases is set when the summary says "no new human infection(s)".
	NoNewCases bool `json:"no_new_cases" yaml:"no_new_cases"`

	// Present lists the tracked strains whose code appears in the summary,
	// in configuration order.
	Present []Strain `json:"present" yaml:"present"`

	// Absent lists the tracked strains whose code does not appear.
	Absent []Strain `json:"absent" yaml:"absent"`
}

// Has reports whether strain s was detected in the summary.
func (c Classification) Has(s Strain) bool {
	for _, p := range c.Present {
		if p == s {
			return true
		}
	}
	return false
}

// NoTrackedStrains reports whether none of the tracked strains appear in the
// summary. This is distinct from NoNewCases: a report may omit the "no new
// human infection" phrase and still mention no tracked strain.
func (c Classification) NoTrackedStrains() bool {
	return len(c.Present) == 0
}
