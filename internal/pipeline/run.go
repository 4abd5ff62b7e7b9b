// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cgostic/who-pdf-reader/internal/convert"
)

// Source lists and fetches remote reports.
type Source interface {
	ListReports(ctx context.Context) ([]string, error)
	Download(ctx context.Context, url string) (string, error)
	Remove(path string) error
}

// forgetter is implemented by openers that cache per-file state.
type forgetter interface {
	Forget(path string)
}

// BatchSummary holds the counts of a run.
type BatchSummary struct {
	Processed int
	Skipped   int
	Failed    int
	Cases     int
}

// Total returns the number of reports handled.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any report failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ProcessRemote lists the reports of src and processes them one at a
// time: download, extract, delete. A failing report is counted and the
// run continues. Progress lines go to w.
func (p *Pipeline) ProcessRemote(ctx context.Context, src Source, open convert.Opener, w io.Writer) (BatchSummary, error) {
	urls, err := src.ListReports(ctx)
	if err != nil {
		return BatchSummary{}, err
	}
	fmt.Fprintf(w, "%d reports located\n", len(urls))

	var summary BatchSummary
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		path, err := src.Download(ctx, u)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", u, err)
			summary.Failed++
			continue
		}
		p.processPath(ctx, open, path, u, w, &summary)
		if f, ok := open.(forgetter); ok {
			f.Forget(path)
		}
		if err := src.Remove(path); err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("could not delete downloaded report")
		}
	}
	printSummary(w, summary)
	return summary, nil
}

// ProcessFiles processes local report files in order.
func (p *Pipeline) ProcessFiles(ctx context.Context, paths []string, open convert.Opener, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.processPath(ctx, open, path, path, w, &summary)
	}
	printSummary(w, summary)
	return summary, nil
}

func (p *Pipeline) processPath(ctx context.Context, open convert.Opener, path, source string, w io.Writer, summary *BatchSummary) {
	name := filepath.Base(path)
	doc, err := open.Open(ctx, path)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		summary.Failed++
		return
	}
	out, err := p.ProcessDocument(ctx, doc, source)
	switch {
	case err != nil:
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		summary.Failed++
	case out.Skipped:
		fmt.Fprintf(w, "skipped:   %s (no report date)\n", name)
		summary.Skipped++
	default:
		fmt.Fprintf(w, "processed: %s (%s, %d cases)\n", name, out.Report.DateString(), len(out.Records))
		summary.Processed++
		summary.Cases += len(out.Records)
	}
}

func printSummary(w io.Writer, s BatchSummary) {
	fmt.Fprintf(w, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d), %d cases\n",
		s.Processed, s.Skipped, s.Failed, s.Total(), s.Cases)
}

// PDFPaths expands args into report files: files are kept as given,
// directories contribute their *.pdf entries in name order.
func PDFPaths(args []string) ([]string, error) {
	var paths []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				found = append(found, filepath.Join(a, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
