// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WarningKind names a class of problem a human reviewer should look at.
type WarningKind string

const (
	WarnReportDate      WarningKind = "report_date"
	WarnCaseCount       WarningKind = "case_count"
	WarnAnnexUnreadable WarningKind = "annex_unreadable"
	WarnSectionMissing  WarningKind = "section_missing"
	WarnSplit           WarningKind = "case_split"
	WarnSex             WarningKind = "sex_unresolved"
	WarnOnset           WarningKind = "onset_format"
	WarnOnsetRollover   WarningKind = "onset_year_rollover"
	WarnExposureText    WarningKind = "exposure_free_text"
)

// Warning is a report-identified note for manual review. It never stops
// processing.
type Warning struct {
	Kind       WarningKind `json:"kind" yaml:"kind"`
	ReportDate string      `json:"report_date,omitempty" yaml:"report_date,omitempty"`
	Source     string      `json:"source" yaml:"source"`
	Strain     Strain      `json:"strain,omitempty" yaml:"strain,omitempty"`
	Message    string      `json:"message" yaml:"message"`
}

// BadDate records a date value that failed canonical parsing, together with
// the date of the report it came from.
type BadDate struct {
	ReportDate string `json:"report_date" yaml:"report_date"`
	Raw        string `json:"raw" yaml:"raw"`
}

// BadDateLog is the append-only list of dates that need manual
// reconciliation. It is passed explicitly to the date normalizer.
type BadDateLog struct {
	Entries []BadDate `json:"entries" yaml:"entries"`
}

// Add appends one entry.
func (l *BadDateLog) Add(reportDate, raw string) {
	l.Entries = append(l.Entries, BadDate{ReportDate: reportDate, Raw: raw})
}

// Len returns the number of logged entries.
func (l *BadDateLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// Review is the manual-review artifact of a run: every warning raised and
// every date that failed canonical parsing, in processing order.
type Review struct {
	Warnings []Warning `json:"warnings" yaml:"warnings"`
	BadDates []BadDate `json:"bad_dates" yaml:"bad_dates"`
}

// Empty reports whether there is nothing to review.
func (r Review) Empty() bool {
	return len(r.Warnings) == 0 && len(r.BadDates) == 0
}

// ReportOutcome is everything produced for one report: its classification,
// the case records of each detected strain, and the review notes.
type ReportOutcome struct {
	Report         Report         `json:"report" yaml:"report"`
	Classification Classification `json:"classification" yaml:"classification"`
	Records        []CaseRecord   `json:"records" yaml:"records"`
	Warnings       []Warning      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	BadDates       []BadDate      `json:"bad_dates,omitempty" yaml:"bad_dates,omitempty"`

	// Skipped is set when the report could not be dated and produced
	// nothing but a warning.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}
