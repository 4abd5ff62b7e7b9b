// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// ErrReportDate reports that neither the header nor the file name yields a
// publication date. Such a report is skipped.
var ErrReportDate = errors.New("report date undetermined")

var (
	// headerDateRe is greedy on purpose: the header lists the period
	// covered and the publication date last, right before "Since".
	headerDateRe = regexp.MustCompile(`Summary and assessment.* (\d{1,2}) ([A-Za-z]+) (\d{4}).*Since`)

	// fileDateRe matches the MM_DD_YYYY stamp in archived file names.
	fileDateRe = regexp.MustCompile(`(\d{2})_(\d{2})_(\d{4})`)
)

// ConvertDate normalizes a dd/mm/yyyy annex cell to YYYY-MM-DD. A value
// that does not parse as a real calendar date is recorded in log against
// reportDate and returned unchanged. log may be nil.
func ConvertDate(raw string, reportDate time.Time, log *types.BadDateLog) string {
	if d, ok := parseDMY(strings.TrimSpace(raw)); ok {
		return d.Format(types.DateLayout)
	}
	if log != nil {
		log.Add(reportDate.Format(types.DateLayout), raw)
	}
	return raw
}

func parseDMY(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return validDate(nums[2], time.Month(nums[1]), nums[0])
}

// validDate builds a UTC date and rejects values time.Date would roll
// over, such as 31 February.
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// ParseReportDate determines the publication date of a report. The first
// window bytes of the normalized text are searched for the header date;
// when that fails the MM_DD_YYYY stamp in the source file name is used.
func ParseReportDate(text, source string, window int) (time.Time, error) {
	head := text
	if window > 0 && len(head) > window {
		head = head[:window]
	}
	if m := headerDateRe.FindStringSubmatch(head); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if month, ok := monthFromWord(m[2]); ok {
			if d, ok := validDate(year, month, day); ok {
				return d, nil
			}
		}
	}

	if m := fileDateRe.FindStringSubmatch(filepath.Base(source)); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d, ok := validDate(year, time.Month(month), day); ok {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrReportDate, filepath.Base(source))
}
