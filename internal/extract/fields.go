package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// Field patterns applied to one case span of a narrative paragraph.
var (
	ageRe = regexp.MustCompile(`(\d{1,2}) ?:?-?(year|month)[- ]old`)

	sexWordRe    = regexp.MustCompile(`(?i)\b(female|male)\b`)
	pronounRe    = regexp.MustCompile(`(?:^| )([Hh]e|[Ss]he)\b`)
	personWordRe = regexp.MustCompile(`(?:^| )([Mm]an|[Ww]oman|[Bb]oy|[Gg]irl)\b`)

	// onsetRes are tried in order; each captures day, month word and an
	// optional explicit year, allowing up to four filler words after the
	// cue ("symptoms on", "onset of illness on").
	onsetRes = []*regexp.Regexp{
		regexp.MustCompile(`[Ss]ymptoms (?:\w* ){0,4}(\d{1,2}) ([A-Za-z]+)(?: (\d{4}))?`),
		regexp.MustCompile(`[Oo]nset (?:\w* ){0,4}(\d{1,2}) ([A-Za-z]+)(?: (\d{4}))?`),
		regexp.MustCompile(`developed (?:\w* ){0,4}(\d{1,2}) ([A-Za-z]+)(?: (\d{4}))?`),
	}

	poultrySentenceRe = regexp.MustCompile(`(?:^|[.;] )([^.;]*\b[Pp]oultry\b[^.;]*)`)
	exposurePhraseRe  = regexp.MustCompile(`(?:\w+ )*[Ee]xposure (?:\w+ )*`)
	birdPhraseRe      = regexp.MustCompile(`(?:\w+ )*[Bb]irds?\b(?: \w+)*`)
	negationRe        = regexp.MustCompile(`\b(?:[Nn]o|[Nn]ot|[Nn]one)\b`)
)

var monthPrefixes = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// monthFromWord resolves a month name, abbreviated or not, by its first
// three letters.
func monthFromWord(word string) (time.Month, bool) {
	if len(word) < 3 {
		return 0, false
	}
	m, ok := monthPrefixes[strings.ToLower(word[:3])]
	return m, ok
}

// ExtractAge returns the first age phrase in span. Ages are one or two
// digits; a "month-old" phrase keeps its unit so infants are not mistaken
// for adults.
func ExtractAge(span string) types.Age {
	m := ageRe.FindStringSubmatch(span)
	if m == nil {
		return types.UnknownAge
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return types.UnknownAge
	}
	unit := types.AgeYears
	if m[2] == "month" {
		unit = types.AgeMonths
	}
	return types.Age{Value: v, Unit: unit, Raw: m[0]}
}

// ExtractSex infers the sex of a case. Explicit "male"/"female" wins, then
// a standalone pronoun, then a gendered person word. The boolean is false
// when nothing matched and the result is SexUnknown.
func ExtractSex(span string) (types.Sex, bool) {
	if m := sexWordRe.FindStringSubmatch(span); m != nil {
		if strings.EqualFold(m[1], "female") {
			return types.SexFemale, true
		}
		return types.SexMale, true
	}
	if m := pronounRe.FindStringSubmatch(span); m != nil {
		if strings.EqualFold(m[1], "she") {
			return types.SexFemale, true
		}
		return types.SexMale, true
	}
	if m := personWordRe.FindStringSubmatch(span); m != nil {
		switch strings.ToLower(m[1]) {
		case "woman", "girl":
			return types.SexFemale, true
		default:
			return types.SexMale, true
		}
	}
	return types.SexUnknown, false
}

// Onset is the result of onset-date extraction for one case.
type Onset struct {
	// Date is YYYY-MM-DD, or types.OnsetCheckFormat when no cue matched.
	Date string
	// Found is false when Date holds the sentinel.
	Found bool
	// Rollover is set when the year was taken from a report published in
	// an earlier month than the onset, which suggests the onset belongs to
	// the previous year.
	Rollover bool
}

// ExtractOnset finds the symptom onset date in span. Cues are tried in
// order ("symptoms", "onset", "developed"); the first whose day and month
// parse wins. An explicit four-digit year after the month is used as is,
// otherwise the year comes from the report date.
func ExtractOnset(span string, reportDate time.Time) Onset {
	for _, re := range onsetRes {
		for _, m := range re.FindAllStringSubmatch(span, -1) {
			month, ok := monthFromWord(m[2])
			if !ok {
				continue
			}
			day, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}

			year := reportDate.Year()
			explicit := m[3] != ""
			if explicit {
				if year, err = strconv.Atoi(m[3]); err != nil {
					continue
				}
			}

			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if d.Day() != day || d.Month() != month {
				continue
			}
			return Onset{
				Date:     d.Format(types.DateLayout),
				Found:    true,
				Rollover: !explicit && month > reportDate.Month(),
			}
		}
	}
	return Onset{Date: types.OnsetCheckFormat}
}

// ExtractPoultryExposure classifies the poultry exposure of a narrative
// case. It looks for a sentence mentioning poultry, then an
// "... exposure ..." phrase, then a phrase about birds. A phrase carrying a
// negation ("no", "not", "none") yields ExposureNo; any other phrase yields
// ExposureYes. With no phrase at all the case is recorded as not exposed.
func ExtractPoultryExposure(span string) types.Exposure {
	phrase, ok := exposurePhrase(span)
	if !ok {
		return types.ExposureNo
	}
	if negationRe.MatchString(phrase) {
		return types.ExposureNo
	}
	return types.ExposureYes
}

func exposurePhrase(span string) (string, bool) {
	if m := poultrySentenceRe.FindStringSubmatch(span); m != nil {
		return m[1], true
	}
	if p := exposurePhraseRe.FindString(span); p != "" {
		return p, true
	}
	if p := birdPhraseRe.FindString(span); p != "" {
		return p, true
	}
	return "", false
}

// describeSpan shortens a span for warning messages.
func describeSpan(span string) string {
	const max = 80
	if len(span) <= max {
		return fmt.Sprintf("%q", span)
	}
	return fmt.Sprintf("%q...", span[:max])
}
