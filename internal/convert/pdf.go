// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/patrickmn/go-cache"
)

const (
	pageCacheTTL     = 30 * time.Minute
	pageCacheCleanup = 10 * time.Minute
)

// PDFOpener reads PDFs in process. Extracted page text and row layouts are
// memoized per file so classification, paragraph search and annex lookup
// decode each page once.
type PDFOpener struct {
	pages *cache.Cache
}

// NewPDFOpener returns an opener with an empty page cache.
func NewPDFOpener() *PDFOpener {
	return &PDFOpener{pages: cache.New(pageCacheTTL, pageCacheCleanup)}
}

// Open reads the file at path fully and parses its cross-reference table.
func (o *PDFOpener) Open(_ context.Context, path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF %s", path)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	return &PDFDocument{path: path, r: r, pages: o.pages}, nil
}

// Forget drops the cached pages of path, typically after the file has
// been deleted.
func (o *PDFOpener) Forget(path string) {
	for key := range o.pages.Items() {
		if len(key) > len(path) && key[:len(path)] == path && key[len(path)] == '#' {
			o.pages.Delete(key)
		}
	}
}

// PDFDocument is a PDF opened with the pure-Go reader.
type PDFDocument struct {
	path  string
	r     *pdf.Reader
	pages *cache.Cache
}

// NumPages returns the page count.
func (d *PDFDocument) NumPages() int { return d.r.NumPage() }

func (d *PDFDocument) key(i int, kind string) string {
	return fmt.Sprintf("%s#%d#%s", d.path, i, kind)
}

// PageText returns the plain text of page i.
func (d *PDFDocument) PageText(i int) (text string, err error) {
	if v, ok := d.pages.Get(d.key(i, "text")); ok {
		return v.(string), nil
	}
	if i < 0 || i >= d.r.NumPage() {
		return "", fmt.Errorf("page %d out of range (%d pages)", i+1, d.r.NumPage())
	}

	page := d.r.Page(i + 1)
	if page.V.IsNull() {
		return "", nil
	}
	// The reader panics on some malformed font and content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding page %d of %s: %v", i+1, d.path, r)
		}
	}()
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("decoding page %d of %s: %w", i+1, d.path, err)
	}
	d.pages.SetDefault(d.key(i, "text"), text)
	return text, nil
}

// Table rebuilds the table laid out on pages first through last from the
// positions of the text runs.
func (d *PDFDocument) Table(first, last int) ([][]string, error) {
	if last >= d.r.NumPage() {
		last = d.r.NumPage() - 1
	}
	if first < 0 || first > last {
		return nil, fmt.Errorf("%w: pages %d-%d", ErrNoTable, first+1, last+1)
	}

	var lines [][]cell
	for i := first; i <= last; i++ {
		pageLines, err := d.pageLines(i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pageLines...)
	}
	return buildTable(lines)
}

func (d *PDFDocument) pageLines(i int) (lines [][]cell, err error) {
	if v, ok := d.pages.Get(d.key(i, "rows")); ok {
		return v.([][]cell), nil
	}
	page := d.r.Page(i + 1)
	if page.V.IsNull() {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading layout of page %d of %s: %v", i+1, d.path, r)
		}
	}()
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("reading layout of page %d of %s: %w", i+1, d.path, err)
	}

	runs := make([][]textRun, 0, len(rows))
	for _, row := range sortRows(rows) {
		line := make([]textRun, 0, len(row.Content))
		for _, t := range row.Content {
			line = append(line, textRun{X: t.X, W: t.W, Size: t.FontSize, S: t.S})
		}
		runs = append(runs, line)
	}
	lines = groupLines(runs)
	d.pages.SetDefault(d.key(i, "rows"), lines)
	return lines, nil
}

// sortRows orders rows top to bottom. PDF user space grows upwards.
func sortRows(rows pdf.Rows) pdf.Rows {
	out := append(pdf.Rows(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position > out[j].Position })
	return out
}
