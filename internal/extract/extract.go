// Package extract turns the text of a WHO avian influenza risk assessment
// into case records: it classifies the report by strain, locates each
// strain's paragraph, resolves the case count and reads the case fields
// from the narrative or from the annex table.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// Document is the page-level view of a report that extraction needs.
// Pages are zero-indexed.
type Document interface {
	// NumPages returns the number of pages.
	NumPages() int

	// PageText returns the raw text of page i.
	PageText(i int) (string, error)

	// Table returns the rows of the table spanning pages first through
	// last, header row first.
	Table(first, last int) ([][]string, error)
}

// strainRule is the compiled form of a types.StrainConfig.
type strainRule struct {
	code    types.Strain
	section *regexp.Regexp
	annex   *regexp.Regexp
}

// Extractor holds the compiled anchors of an extraction configuration.
// It is safe for concurrent use.
type Extractor struct {
	cfg          types.ExtractionConfig
	summaryOpen  *regexp.Regexp
	summaryClose *regexp.Regexp
	sectionClose *regexp.Regexp
	strains      []strainRule
}

// New compiles cfg. Zero-valued fields fall back to
// types.DefaultExtractionConfig.
func New(cfg types.ExtractionConfig) (*Extractor, error) {
	def := types.DefaultExtractionConfig()
	if len(cfg.Strains) == 0 {
		cfg.Strains = def.Strains
	}
	if cfg.SummaryOpen == "" {
		cfg.SummaryOpen = def.SummaryOpen
	}
	if cfg.SummaryClose == "" {
		cfg.SummaryClose = def.SummaryClose
	}
	if cfg.SectionClose == "" {
		cfg.SectionClose = def.SectionClose
	}
	if cfg.MaxCaseCount <= 0 {
		cfg.MaxCaseCount = def.MaxCaseCount
	}
	if cfg.SplitBackoff <= 0 {
		cfg.SplitBackoff = def.SplitBackoff
	}
	if cfg.HeaderWindow <= 0 {
		cfg.HeaderWindow = def.HeaderWindow
	}

	e := &Extractor{cfg: cfg}
	var err error
	if e.summaryOpen, err = compile("summary_open", cfg.SummaryOpen); err != nil {
		return nil, err
	}
	if e.summaryClose, err = compile("summary_close", cfg.SummaryClose); err != nil {
		return nil, err
	}
	if e.sectionClose, err = compile("section_close", cfg.SectionClose); err != nil {
		return nil, err
	}

	seen := make(map[types.Strain]bool)
	for _, sc := range cfg.Strains {
		code := types.Strain(strings.TrimSpace(string(sc.Code)))
		if code == "" {
			return nil, errors.New("strain with empty code")
		}
		if seen[code] {
			return nil, fmt.Errorf("strain %s configured twice", code)
		}
		seen[code] = true

		rule := strainRule{code: code}
		if rule.section, err = compile(string(code)+" section_anchor", sc.SectionAnchor); err != nil {
			return nil, err
		}
		if rule.annex, err = compile(string(code)+" annex_anchor", sc.AnnexAnchor); err != nil {
			return nil, err
		}
		e.strains = append(e.strains, rule)
	}
	return e, nil
}

func compile(name, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("%s: empty pattern", name)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return re, nil
}

// Config returns the effective configuration, defaults applied.
func (e *Extractor) Config() types.ExtractionConfig { return e.cfg }

// Strains returns the tracked strain codes in configuration order.
func (e *Extractor) Strains() []types.Strain {
	out := make([]types.Strain, len(e.strains))
	for i, r := range e.strains {
		out[i] = r.code
	}
	return out
}

func (e *Extractor) rule(s types.Strain) (strainRule, bool) {
	for _, r := range e.strains {
		if r.code == s {
			return r, true
		}
	}
	return strainRule{}, false
}

// ReadReport reads every page of doc, normalizes the text and dates the
// report. An undatable report is returned together with an error wrapping
// ErrReportDate so the caller can record the warning and skip it.
func (e *Extractor) ReadReport(doc Document, source string) (types.Report, error) {
	rep := types.Report{Source: source}
	for i := 0; i < doc.NumPages(); i++ {
		text, err := doc.PageText(i)
		if err != nil {
			return rep, fmt.Errorf("reading page %d of %s: %w", i+1, source, err)
		}
		rep.Pages = append(rep.Pages, text)
	}
	rep.Text = NormalizeText(strings.Join(rep.Pages, "\n"))

	date, err := ParseReportDate(rep.Text, source, e.cfg.HeaderWindow)
	if err != nil {
		return rep, err
	}
	rep.Date = date
	return rep, nil
}

// Result is the outcome of extracting one strain from one report.
type Result struct {
	Records  []types.CaseRecord
	Warnings []types.Warning
	BadDates types.BadDateLog

	// CaseCount is the count resolved from the paragraph, 0 if unresolved.
	CaseCount int

	// Annex is set when records were sought in the annex table.
	Annex bool
}

// ExtractCases produces the case records of strain for a report the
// classifier flagged as mentioning it. Problems are returned as warnings;
// extraction itself never fails.
func (e *Extractor) ExtractCases(doc Document, rep types.Report, strain types.Strain) Result {
	var res Result
	rule, ok := e.rule(strain)
	if !ok {
		res.Warnings = append(res.Warnings, newWarning(types.WarnSectionMissing, rep, strain,
			"strain is not configured"))
		return res
	}

	paragraph := Section(rep.Text, rule.section, e.sectionClose)
	if paragraph == "" {
		res.Warnings = append(res.Warnings, newWarning(types.WarnSectionMissing, rep, strain,
			"strain paragraph not found"))
		return res
	}

	count, countErr := ResolveCaseCount(paragraph, e.cfg.MaxCaseCount)
	res.CaseCount = count

	if annexMentionRe.MatchString(paragraph) {
		res.Annex = true
		e.extractAnnex(doc, rep, rule, &res)
		return res
	}
	if countErr != nil {
		res.Warnings = append(res.Warnings, newWarning(types.WarnCaseCount, rep, strain, countErr.Error()))
		return res
	}
	e.extractNarrative(paragraph, count, rep, strain, &res)
	return res
}

func (e *Extractor) extractAnnex(doc Document, rep types.Report, rule strainRule, res *Result) {
	table, err := readAnnex(doc, rule.annex, rule.code, rep)
	if err != nil {
		res.Warnings = append(res.Warnings, newWarning(types.WarnAnnexUnreadable, rep, rule.code, err.Error()))
		return
	}
	res.Records = append(res.Records, table.Records...)
	res.Warnings = append(res.Warnings, table.Warnings...)
	res.BadDates.Entries = append(res.BadDates.Entries, table.BadDates.Entries...)
}

func (e *Extractor) extractNarrative(paragraph string, count int, rep types.Report, strain types.Strain, res *Result) {
	spans, complete := SplitCases(paragraph, count, e.cfg.SplitBackoff)
	if !complete {
		res.Warnings = append(res.Warnings, newWarning(types.WarnSplit, rep, strain,
			fmt.Sprintf("found fewer age phrases than the %d cases reported; later cases share text", count)))
	}

	for i, span := range spans {
		sex, ok := ExtractSex(span)
		if !ok {
			res.Warnings = append(res.Warnings, newWarning(types.WarnSex, rep, strain,
				fmt.Sprintf("case %d: sex not stated in %s", i+1, describeSpan(span))))
		}
		onset := ExtractOnset(span, rep.Date)
		switch {
		case !onset.Found:
			res.Warnings = append(res.Warnings, newWarning(types.WarnOnset, rep, strain,
				fmt.Sprintf("case %d: onset date not found in %s", i+1, describeSpan(span))))
		case onset.Rollover:
			res.Warnings = append(res.Warnings, newWarning(types.WarnOnsetRollover, rep, strain,
				fmt.Sprintf("case %d: onset %s is later in the year than the report", i+1, onset.Date)))
		}

		res.Records = append(res.Records, assemble(strain, rep, caseFields{
			age:     ExtractAge(span),
			sex:     sex,
			onset:   onset.Date,
			poultry: ExtractPoultryExposure(span),
			// No rule detects contact with sick people in narrative text.
			sickHuman: types.ExposureNo,
		}))
	}
}
