// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs reports through classification and case
// extraction, accumulating the per-strain results and the review log of a
// run.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cgostic/who-pdf-reader/internal/extract"
	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// Sink receives every report outcome as soon as it is complete, e.g. to
// archive it.
type Sink interface {
	SaveReport(ctx context.Context, out types.ReportOutcome) error
}

// Pipeline is not safe for concurrent use; reports are processed one at a
// time.
type Pipeline struct {
	ex      *extract.Extractor
	log     zerolog.Logger
	sink    Sink
	records *Collection
	review  types.Review
}

// New returns a pipeline using ex. sink may be nil.
func New(ex *extract.Extractor, log zerolog.Logger, sink Sink) *Pipeline {
	return &Pipeline{
		ex:      ex,
		log:     log,
		sink:    sink,
		records: NewCollection(ex.Strains()),
	}
}

// Collection returns the records gathered so far.
func (p *Pipeline) Collection() *Collection { return p.records }

// Review returns the warnings and bad dates gathered so far.
func (p *Pipeline) Review() types.Review { return p.review }

// ProcessDocument reads, classifies and extracts one report. A report
// that cannot be dated is returned with Skipped set and a warning; only
// document and sink failures are errors.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc extract.Document, source string) (types.ReportOutcome, error) {
	rep, err := p.ex.ReadReport(doc, source)
	if errors.Is(err, extract.ErrReportDate) {
		out := types.ReportOutcome{
			Report:  rep,
			Skipped: true,
			Warnings: []types.Warning{{
				Kind:    types.WarnReportDate,
				Source:  source,
				Message: err.Error(),
			}},
		}
		p.log.Warn().Str("source", source).Msg("report date not found; report skipped")
		return out, p.record(ctx, out)
	}
	if err != nil {
		return types.ReportOutcome{}, err
	}

	logger := p.log.With().Str("report", rep.DateString()).Str("source", source).Logger()
	out := types.ReportOutcome{Report: rep, Classification: p.ex.ClassifyReport(rep.Text)}

	if out.Classification.NoNewCases {
		logger.Info().Msg("summary reports no new human infections")
	}
	if out.Classification.NoTrackedStrains() {
		logger.Info().Msg("no tracked strain in new-infections summary")
	}

	for _, s := range p.ex.Strains() {
		if !out.Classification.Has(s) {
			continue
		}
		res := p.ex.ExtractCases(doc, rep, s)
		out.Records = append(out.Records, res.Records...)
		out.Warnings = append(out.Warnings, res.Warnings...)
		out.BadDates = append(out.BadDates, res.BadDates.Entries...)

		logger.Info().
			Str("strain", string(s)).
			Int("cases", len(res.Records)).
			Int("reported", res.CaseCount).
			Bool("annex", res.Annex).
			Msg("cases extracted")
	}

	for _, w := range out.Warnings {
		logger.Warn().Str("kind", string(w.Kind)).Str("strain", string(w.Strain)).Msg(w.Message)
	}
	for _, b := range out.BadDates {
		logger.Warn().Str("raw", b.Raw).Msg("date needs manual review")
	}
	return out, p.record(ctx, out)
}

// record adds out to the run totals and hands it to the sink.
func (p *Pipeline) record(ctx context.Context, out types.ReportOutcome) error {
	p.records.Append(out.Records...)
	p.review.Warnings = append(p.review.Warnings, out.Warnings...)
	p.review.BadDates = append(p.review.BadDates, out.BadDates...)

	if p.sink == nil {
		return nil
	}
	if err := p.sink.SaveReport(ctx, out); err != nil {
		return fmt.Errorf("saving report %s: %w", out.Report.Source, err)
	}
	return nil
}
