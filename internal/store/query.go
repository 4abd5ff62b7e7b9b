// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// RunInfo summarizes an archived run.
type RunInfo struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Skipped    int
	Failed     int
	Cases      int
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, COALESCE(r.finished_at, ''), r.processed, r.skipped, r.failed,
			(SELECT count(*) FROM cases c WHERE c.run_id = r.id)
		 FROM runs r ORDER BY r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info              RunInfo
			started, finished string
		)
		if err := rows.Scan(&info.ID, &started, &finished,
			&info.Processed, &info.Skipped, &info.Failed, &info.Cases); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		info.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			info.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// LatestRun returns the id of the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY rowid DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("finding latest run: %w", err)
	}
	return id, nil
}

// Records returns the case records of a run in the order they were
// archived.
func (s *Store) Records(ctx context.Context, runID string) ([]types.CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strain, age_value, age_unit, COALESCE(age_raw, ''), sex, date_onset, date_announced,
			poultry_exposure, sick_human_exposure, COALESCE(source, '')
		 FROM cases WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying cases: %w", err)
	}
	defer rows.Close()

	var recs []types.CaseRecord
	for rows.Next() {
		var (
			c                            types.CaseRecord
			strain, unit, sex, announced string
			poultry, sickHuman           string
		)
		if err := rows.Scan(&strain, &c.Age.Value, &unit, &c.Age.Raw, &sex, &c.DateOnset,
			&announced, &poultry, &sickHuman, &c.Source); err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		c.Strain = types.Strain(strain)
		c.Age.Unit = types.AgeUnit(unit)
		c.Sex = types.Sex(sex)
		c.PoultryExposure = types.Exposure(poultry)
		c.SickHumanExposure = types.Exposure(sickHuman)
		c.DateAnnounced, err = time.Parse(types.DateLayout, announced)
		if err != nil {
			return nil, fmt.Errorf("case announced date %q: %w", announced, err)
		}
		recs = append(recs, c)
	}
	return recs, rows.Err()
}

// Review returns the warnings and bad dates of a run in archive order.
func (s *Store) Review(ctx context.Context, runID string) (types.Review, error) {
	var review types.Review

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COALESCE(report_date, ''), COALESCE(source, ''), COALESCE(strain, ''), COALESCE(message, '')
		 FROM warnings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return review, fmt.Errorf("querying warnings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var w types.Warning
		var kind, strain string
		if err := rows.Scan(&kind, &w.ReportDate, &w.Source, &strain, &w.Message); err != nil {
			return review, fmt.Errorf("scanning warning: %w", err)
		}
		w.Kind = types.WarningKind(kind)
		w.Strain = types.Strain(strain)
		review.Warnings = append(review.Warnings, w)
	}
	if err := rows.Err(); err != nil {
		return review, err
	}

	dateRows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(report_date, ''), raw FROM bad_dates WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return review, fmt.Errorf("querying bad dates: %w", err)
	}
	defer dateRows.Close()
	for dateRows.Next() {
		var d types.BadDate
		if err := dateRows.Scan(&d.ReportDate, &d.Raw); err != nil {
			return review, fmt.Errorf("scanning bad date: %w", err)
		}
		review.BadDates = append(review.BadDates, d)
	}
	return review, dateRows.Err()
}
