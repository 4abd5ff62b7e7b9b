// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store archives runs in SQLite: the reports each run processed,
// their case records and the review notes, so a run can be re-exported
// without re-reading the PDFs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// ErrNoRuns is returned by LatestRun on an empty archive.
var ErrNoRuns = errors.New("no runs archived")

// Store manages the archive database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			processed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			report_date TEXT,
			no_new_cases INTEGER NOT NULL,
			present TEXT,
			skipped INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL REFERENCES reports(id),
			run_id TEXT NOT NULL REFERENCES runs(id),
			strain TEXT NOT NULL,
			age_value INTEGER,
			age_unit TEXT NOT NULL,
			age_raw TEXT,
			sex TEXT NOT NULL,
			date_onset TEXT NOT NULL,
			date_announced TEXT NOT NULL,
			poultry_exposure TEXT NOT NULL,
			sick_human_exposure TEXT NOT NULL,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_run ON cases(run_id, strain)`,
		`CREATE TABLE IF NOT EXISTS warnings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL REFERENCES reports(id),
			run_id TEXT NOT NULL REFERENCES runs(id),
			kind TEXT NOT NULL,
			report_date TEXT,
			source TEXT,
			strain TEXT,
			message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS bad_dates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL REFERENCES reports(id),
			run_id TEXT NOT NULL REFERENCES runs(id),
			report_date TEXT,
			raw TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one archived pipeline run. It receives report outcomes as the
// pipeline produces them.
type Run struct {
	ID    string
	store *Store
}

// BeginRun registers a new run and returns it.
func (s *Store) BeginRun(ctx context.Context) (*Run, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("registering run: %w", err)
	}
	return &Run{ID: id, store: s}, nil
}

// Finish stamps the run with its end time and report counts.
func (r *Run) Finish(ctx context.Context, processed, skipped, failed int) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, skipped = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), processed, skipped, failed, r.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", r.ID, err)
	}
	return nil
}
