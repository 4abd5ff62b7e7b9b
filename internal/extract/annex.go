package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// ErrAnnexUnreadable reports that neither the annex page nor the page after
// it yielded a usable table.
var ErrAnnexUnreadable = errors.New("annex unreadable, manual review required")

// errAnnexColumns reports a table that does not reduce to the four case
// columns.
var errAnnexColumns = errors.New("annex table does not have four case columns")

// annexMentionRe decides whether a strain paragraph defers to the annex.
var annexMentionRe = regexp.MustCompile(`[Aa]nnex`)

var (
	annexAgeMonthsRe = regexp.MustCompile(`(?i)^(\d{1,2})\s*(?:m|mo|mos|months?)$`)
	annexAgeYearsRe  = regexp.MustCompile(`(?i)^(\d{1,3})\s*(?:y|yr|yrs|years?)?$`)
)

// droppedColumnPrefixes identify the province and case-ID columns, which
// are not part of a case record.
var droppedColumnPrefixes = []string{"Pro", "Case"}

// exposureRule maps an annex exposure cell, lowercased and trimmed, to a
// code. Rules are evaluated in order and the first match wins.
type exposureRule struct {
	match  func(cell string) bool
	result types.Exposure
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func hasPrefix(prefix string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, prefix) }
}

var exposureRules = []exposureRule{
	{contains("poultry"), types.ExposureYes},
	{contains("no known exposure"), types.ExposureNo},
	{contains("investig"), types.ExposureUnknown},
	{contains("occupational exposure"), types.ExposureYes},
	{hasPrefix("unknow"), types.ExposureUnknown},
	{func(s string) bool { return s == "no" || strings.HasPrefix(s, "no ") }, types.ExposureNo},
	{func(s string) bool { return s == "nr" }, types.ExposureUnknown},
}

// NormalizeExposure maps a raw annex exposure cell to a poultry exposure
// code and derives sick-human exposure from the same cell. A cell matching
// no rule keeps its text as the poultry value; sick-human exposure is 1
// when that leftover text is alphabetic. Blank cells are unknown for both.
func NormalizeExposure(cell string) (poultry, sickHuman types.Exposure) {
	text := whitespaceRe.ReplaceAllString(strings.TrimSpace(cell), " ")
	if text == "" {
		return types.ExposureUnknown, types.ExposureUnknown
	}
	lower := strings.ToLower(text)
	for _, r := range exposureRules {
		if r.match(lower) {
			return r.result, types.ExposureNo
		}
	}
	if strings.IndexFunc(text, unicode.IsLetter) >= 0 {
		return types.Exposure(text), types.ExposureYes
	}
	return types.Exposure(text), types.ExposureNo
}

func parseAnnexAge(cell string) types.Age {
	s := strings.TrimSpace(cell)
	if m := annexAgeMonthsRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.Atoi(m[1])
		return types.Age{Value: v, Unit: types.AgeMonths, Raw: s}
	}
	if m := annexAgeYearsRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.Atoi(m[1])
		return types.Age{Value: v, Unit: types.AgeYears, Raw: s}
	}
	return types.Age{Unit: types.AgeUnknown, Raw: s}
}

func parseAnnexSex(cell string) types.Sex {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "m", "male":
		return types.SexMale
	case "f", "female":
		return types.SexFemale
	}
	return types.SexUnknown
}

// caseColumns returns the indices of the columns that remain after the
// province and case-ID columns are dropped. Exactly four must remain; they
// are taken as age, sex, onset date and exposure, left to right.
func caseColumns(header []string) ([]int, error) {
	var keep []int
	for i, h := range header {
		h = strings.TrimSpace(h)
		dropped := false
		for _, p := range droppedColumnPrefixes {
			if strings.HasPrefix(h, p) {
				dropped = true
				break
			}
		}
		if !dropped {
			keep = append(keep, i)
		}
	}
	if len(keep) != 4 {
		return nil, fmt.Errorf("%w: %d columns after dropping %v", errAnnexColumns, len(keep), droppedColumnPrefixes)
	}
	return keep, nil
}

// AnnexTable is the outcome of parsing one annex table.
type AnnexTable struct {
	Records  []types.CaseRecord
	Warnings []types.Warning
	BadDates types.BadDateLog
}

// ParseAnnexTable converts an annex table, header row first, into case
// records. Repeated header rows (tables continued across pages) and blank
// rows are skipped. The result depends only on the arguments.
func ParseAnnexTable(table [][]string, strain types.Strain, rep types.Report) (AnnexTable, error) {
	var out AnnexTable
	if len(table) == 0 {
		return out, fmt.Errorf("%w: empty table", errAnnexColumns)
	}
	cols, err := caseColumns(table[0])
	if err != nil {
		return out, err
	}

	for _, row := range table[1:] {
		if blankRow(row) || sameRow(row, table[0]) {
			continue
		}
		cell := func(i int) string {
			if cols[i] < len(row) {
				return row[cols[i]]
			}
			return ""
		}

		poultry, sick := NormalizeExposure(cell(3))
		rec := assemble(strain, rep, caseFields{
			age:       parseAnnexAge(cell(0)),
			sex:       parseAnnexSex(cell(1)),
			onset:     ConvertDate(cell(2), rep.Date, &out.BadDates),
			poultry:   poultry,
			sickHuman: sick,
		})
		out.Records = append(out.Records, rec)

		if !poultry.Coded() {
			out.Warnings = append(out.Warnings, newWarning(types.WarnExposureText, rep, strain,
				fmt.Sprintf("annex exposure %q kept as free text", string(poultry))))
		}
		if rec.Sex == types.SexUnknown {
			out.Warnings = append(out.Warnings, newWarning(types.WarnSex, rep, strain,
				fmt.Sprintf("annex sex cell %q not recognized", strings.TrimSpace(cell(1)))))
		}
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sameRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

// findAnnexPage returns the zero-based index of the last page whose text
// matches the annex header.
func findAnnexPage(doc Document, header *regexp.Regexp) (int, error) {
	found := -1
	for i := 0; i < doc.NumPages(); i++ {
		text, err := doc.PageText(i)
		if err != nil {
			return -1, fmt.Errorf("reading page %d: %w", i+1, err)
		}
		if header.MatchString(text) {
			found = i
		}
	}
	return found, nil
}

// readAnnex locates the annex header and parses the table from that page
// to the end of the document, retrying once from the following page.
func readAnnex(doc Document, header *regexp.Regexp, strain types.Strain, rep types.Report) (AnnexTable, error) {
	if doc == nil {
		return AnnexTable{}, fmt.Errorf("%w: no document", ErrAnnexUnreadable)
	}
	page, err := findAnnexPage(doc, header)
	if err != nil {
		return AnnexTable{}, fmt.Errorf("%w: %v", ErrAnnexUnreadable, err)
	}
	if page < 0 {
		return AnnexTable{}, fmt.Errorf("%w: annex header not found", ErrAnnexUnreadable)
	}

	last := doc.NumPages() - 1
	var lastErr error
	for first := page; first <= page+1 && first <= last; first++ {
		table, err := doc.Table(first, last)
		if err != nil {
			lastErr = err
			continue
		}
		parsed, err := ParseAnnexTable(table, strain, rep)
		if err != nil {
			lastErr = err
			continue
		}
		return parsed, nil
	}
	return AnnexTable{}, fmt.Errorf("%w: %v", ErrAnnexUnreadable, lastErr)
}

// dateOf formats t for warnings; the zero time yields "".
func dateOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(types.DateLayout)
}

func newWarning(kind types.WarningKind, rep types.Report, strain types.Strain, msg string) types.Warning {
	return types.Warning{
		Kind:       kind,
		ReportDate: dateOf(rep.Date),
		Source:     rep.Source,
		Strain:     strain,
		Message:    msg,
	}
}
