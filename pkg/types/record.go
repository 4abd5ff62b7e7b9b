// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"time"
)

// AgeUnit tells whether an extracted age counts years or months.
type AgeUnit string

const (
	AgeYears   AgeUnit = "years"
	AgeMonths  AgeUnit = "months"
	AgeUnknown AgeUnit = "unknown"
)

// Age is a patient age with an explicit unit. Raw keeps annex cell text that
// could not be read as a number so the value still reaches the output.
type Age struct {
	Value int     `json:"value" yaml:"value"`
	Unit  AgeUnit `json:"unit" yaml:"unit"`
	Raw   string  `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// UnknownAge is the sentinel for an age that could not be extracted.
var UnknownAge = Age{Unit: AgeUnknown}

// Known reports whether the age holds a number.
func (a Age) Known() bool {
	return a.Unit == AgeYears || a.Unit == AgeMonths
}

// String renders the age digits without the unit, or the raw text, or
// "unknown".
func (a Age) String() string {
	if a.Known() {
		return strconv.Itoa(a.Value)
	}
	if a.Raw != "" {
		return a.Raw
	}
	return Unknown
}

// Unknown is the sentinel written for any field that could not be resolved.
const Unknown = "unknown"

// Sex of a patient.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Exposure is a normalized exposure code. Values are ExposureNo,
// ExposureYes, ExposureUnknown or, for annex cells that match no rule, the
// cell's free text.
type Exposure string

const (
	ExposureNo      Exposure = "0"
	ExposureYes     Exposure = "1"
	ExposureUnknown Exposure = "unknown"
)

// Coded reports whether the exposure is one of the enumerated codes rather
// than free text.
func (e Exposure) Coded() bool {
	return e == ExposureNo || e == ExposureYes || e == ExposureUnknown
}

// OnsetCheckFormat is the date_onset sentinel used when no onset phrase
// could be found in a case description.
const OnsetCheckFormat = "check onset date format"

// CaseRecord is one extracted case. DateAnnounced always equals the owning
// report's date. DateOnset holds a canonical date, the raw unparsed string,
// or a sentinel.
type CaseRecord struct {
	Strain            Strain    `json:"strain" yaml:"strain"`
	Age               Age       `json:"age" yaml:"age"`
	Sex               Sex       `json:"sex" yaml:"sex"`
	DateOnset         string    `json:"date_onset" yaml:"date_onset"`
	DateAnnounced     time.Time `json:"date_announced" yaml:"date_announced"`
	PoultryExposure   Exposure  `json:"poultry_exposure" yaml:"poultry_exposure"`
	SickHumanExposure Exposure  `json:"sick_human_exposure" yaml:"sick_human_exposure"`

	// Source identifies the report the case was read from.
	Source string `json:"source" yaml:"source"`
}

// CSVHeader is the column order of the per-strain output files.
var CSVHeader = []string{
	"strain", "age", "sex", "date_onset", "date_announced",
	"poultry_exposure", "sick_human_exposure",
}

// Row renders the record in CSVHeader order.
func (c CaseRecord) Row() []string {
	return []string{
		string(c.Strain),
		c.Age.String(),
		string(c.Sex),
		c.DateOnset,
		c.DateAnnounced.Format(DateLayout),
		string(c.PoultryExposure),
		string(c.SickHumanExposure),
	}
}
