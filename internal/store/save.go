// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// SaveReport archives one report outcome in a single transaction.
func (r *Run) SaveReport(ctx context.Context, out types.ReportOutcome) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	reportDate := ""
	if !out.Report.Date.IsZero() {
		reportDate = out.Report.DateString()
	}
	present, _ := json.Marshal(out.Classification.Present)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reports (run_id, source, report_date, no_new_cases, present, skipped)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, out.Report.Source, reportDate, out.Classification.NoNewCases,
		string(present), out.Skipped,
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	reportID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading report id: %w", err)
	}

	if err := r.insertCases(ctx, tx, reportID, out.Records); err != nil {
		return err
	}
	if err := r.insertWarnings(ctx, tx, reportID, out.Warnings); err != nil {
		return err
	}
	if err := r.insertBadDates(ctx, tx, reportID, out.BadDates); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Run) insertCases(ctx context.Context, tx *sql.Tx, reportID int64, recs []types.CaseRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cases (report_id, run_id, strain, age_value, age_unit, age_raw, sex,
			date_onset, date_announced, poultry_exposure, sick_human_exposure, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing case insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range recs {
		_, err := stmt.ExecContext(ctx,
			reportID, r.ID, string(c.Strain), c.Age.Value, string(c.Age.Unit), c.Age.Raw,
			string(c.Sex), c.DateOnset, c.DateAnnounced.Format(types.DateLayout),
			string(c.PoultryExposure), string(c.SickHumanExposure), c.Source,
		)
		if err != nil {
			return fmt.Errorf("inserting case %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *Run) insertWarnings(ctx context.Context, tx *sql.Tx, reportID int64, warnings []types.Warning) error {
	for _, w := range warnings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO warnings (report_id, run_id, kind, report_date, source, strain, message)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reportID, r.ID, string(w.Kind), w.ReportDate, w.Source, string(w.Strain), w.Message,
		)
		if err != nil {
			return fmt.Errorf("inserting warning: %w", err)
		}
	}
	return nil
}

func (r *Run) insertBadDates(ctx context.Context, tx *sql.Tx, reportID int64, dates []types.BadDate) error {
	for _, d := range dates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bad_dates (report_id, run_id, report_date, raw) VALUES (?, ?, ?, ?)`,
			reportID, r.ID, d.ReportDate, d.Raw,
		)
		if err != nil {
			return fmt.Errorf("inserting bad date: %w", err)
		}
	}
	return nil
}
