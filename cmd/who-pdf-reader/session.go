// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/cgostic/who-pdf-reader/internal/convert"
	"github.com/cgostic/who-pdf-reader/internal/export"
	"github.com/cgostic/who-pdf-reader/internal/extract"
	"github.com/cgostic/who-pdf-reader/internal/pipeline"
	"github.com/cgostic/who-pdf-reader/internal/store"
	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// session wires the stages of one run: the document backend, the
// pipeline and, when configured, the run archive.
type session struct {
	cfg    types.PipelineConfig
	opener convert.Opener
	pipe   *pipeline.Pipeline
	store  *store.Store
	run    *store.Run
}

func openSession(ctx context.Context, cfg types.PipelineConfig) (*session, error) {
	ex, err := extract.New(cfg.Extraction)
	if err != nil {
		return nil, err
	}
	opener, err := convert.NewOpener(ctx, cfg.Conversion)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, opener: opener}
	var sink pipeline.Sink
	if cfg.Store.Path != "" {
		s.store, err = store.Open(cfg.Store)
		if err != nil {
			return nil, err
		}
		s.run, err = s.store.BeginRun(ctx)
		if err != nil {
			s.store.Close()
			return nil, err
		}
		sink = s.run
		log.Info().Str("run", s.run.ID).Str("store", cfg.Store.Path).Msg("archiving run")
	}
	s.pipe = pipeline.New(ex, log.Logger, sink)
	return s, nil
}

// finish writes the run artifacts and closes the archive.
func (s *session) finish(ctx context.Context, summary pipeline.BatchSummary, w io.Writer) error {
	if s.store != nil {
		defer s.store.Close()
		if err := s.run.Finish(ctx, summary.Processed, summary.Skipped, summary.Failed); err != nil {
			return err
		}
	}
	return writeArtifacts(s.cfg.Output, s.pipe.Collection(), s.pipe.Review(), w)
}

func writeArtifacts(cfg types.OutputConfig, set export.RecordSet, review types.Review, w io.Writer) error {
	paths, err := export.WriteStrainFiles(cfg, set)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(w, "wrote %s\n", p)
	}

	if !review.Empty() {
		path := filepath.Join(cfg.ResultsDir, cfg.ReviewFile)
		if err := export.WriteReview(path, review); err != nil {
			return fmt.Errorf("writing review file: %w", err)
		}
		fmt.Fprintf(w, "wrote %s (%d warnings, %d bad dates)\n", path, len(review.Warnings), len(review.BadDates))
	}
	return export.PrintBadDates(w, review.BadDates)
}

func strainCodes(cfg types.ExtractionConfig) []types.Strain {
	codes := make([]types.Strain, len(cfg.Strains))
	for i, sc := range cfg.Strains {
		codes[i] = sc.Code
	}
	return codes
}
