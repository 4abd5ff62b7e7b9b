// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the tabular artifacts of a run: one CSV file per
// tracked strain, the review file and the bad-date table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"go.yaml.in/yaml/v3"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// RecordSet is a read-only view of per-strain case records.
type RecordSet interface {
	Strains() []types.Strain
	Records(s types.Strain) []types.CaseRecord
}

// WriteCSV writes recs with the CSVHeader columns, one row per record in
// the given order.
func WriteCSV(w io.Writer, recs []types.CaseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.CSVHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StrainFile returns the CSV path of strain s under cfg.
func StrainFile(cfg types.OutputConfig, s types.Strain) string {
	return filepath.Join(cfg.ResultsDir, fmt.Sprintf(cfg.CSVPattern, s))
}

// WriteStrainFiles writes one CSV file per strain of set, header-only
// files included, and returns the paths written.
func WriteStrainFiles(cfg types.OutputConfig, set RecordSet) ([]string, error) {
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	var paths []string
	for _, s := range set.Strains() {
		path := StrainFile(cfg, s)
		if err := writeFile(path, func(w io.Writer) error {
			return WriteCSV(w, set.Records(s))
		}); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteReview writes the review as YAML to path.
func WriteReview(path string, review types.Review) error {
	data, err := yaml.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReview loads a review file written by WriteReview.
func ReadReview(path string) (types.Review, error) {
	var review types.Review
	data, err := os.ReadFile(path)
	if err != nil {
		return review, err
	}
	if err := yaml.Unmarshal(data, &review); err != nil {
		return review, fmt.Errorf("parsing %s: %w", path, err)
	}
	return review, nil
}

// PrintBadDates writes the dates that need manual reconciliation as a
// two-column table. Nothing is written when there are none.
func PrintBadDates(w io.Writer, entries []types.BadDate) error {
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintf(w, "%d date(s) need manual review:\n", len(entries))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Report date\t| Date detected")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t| %s\n", e.ReportDate, e.Raw)
	}
	return tw.Flush()
}

// writeFile writes through a temporary file in the same directory and
// renames it over path so a failed write never leaves a partial CSV.
func writeFile(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
