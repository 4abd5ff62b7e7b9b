// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert opens downloaded report PDFs as page-addressable
// documents. The default backend reads the PDF in process; the container
// backend shells out to pdftotext for files the pure-Go reader cannot
// decode.
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/cgostic/who-pdf-reader/internal/container"
	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// ErrNoTable reports that no tabular layout was found on the requested
// pages.
var ErrNoTable = errors.New("no table found")

// Document is one opened report. Pages are zero-indexed.
type Document interface {
	NumPages() int
	PageText(i int) (string, error)
	Table(first, last int) ([][]string, error)
}

// Opener opens the report at path.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// NewOpener returns the opener for the configured backend. The container
// backend requires a working docker or podman and the configured image.
func NewOpener(ctx context.Context, cfg types.ConversionConfig) (Opener, error) {
	switch cfg.Backend {
	case "", types.BackendPDF:
		return NewPDFOpener(), nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewPdftotextOpener(ctx, rt, cfg.Image)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}

// TextDocument is a document held in memory: page text plus, optionally,
// tables keyed by the first page they start on.
type TextDocument struct {
	Pages  []string
	Tables map[int][][]string
}

// NumPages returns the number of pages.
func (d *TextDocument) NumPages() int { return len(d.Pages) }

// PageText returns the text of page i.
func (d *TextDocument) PageText(i int) (string, error) {
	if i < 0 || i >= len(d.Pages) {
		return "", fmt.Errorf("page %d out of range (%d pages)", i+1, len(d.Pages))
	}
	return d.Pages[i], nil
}

// Table returns the table registered for page first. When none is
// registered the pages are parsed as fixed-width text.
func (d *TextDocument) Table(first, last int) ([][]string, error) {
	if t, ok := d.Tables[first]; ok {
		return t, nil
	}
	if first < 0 || first >= len(d.Pages) || last < first {
		return nil, fmt.Errorf("%w: pages %d-%d", ErrNoTable, first+1, last+1)
	}
	if last >= len(d.Pages) {
		last = len(d.Pages) - 1
	}
	return tableFromText(d.Pages[first : last+1])
}
