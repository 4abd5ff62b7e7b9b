// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cgostic/who-pdf-reader/internal/container"
)

// pdftotextArgs makes poppler read the PDF from stdin and write
// layout-preserving UTF-8 text to stdout, one form feed per page.
var pdftotextArgs = []string{"pdftotext", "-layout", "-enc", "UTF-8", "-", "-"}

// PdftotextOpener converts PDFs by piping them through a pdftotext
// container image.
type PdftotextOpener struct {
	runtime container.Runtime
	image   string
}

// NewPdftotextOpener verifies that image exists in rt before returning.
func NewPdftotextOpener(ctx context.Context, rt container.Runtime, image string) (*PdftotextOpener, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &PdftotextOpener{runtime: rt, image: image}, nil
}

// Open converts the PDF at path and returns its pages as text.
func (o *PdftotextOpener) Open(ctx context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	inv := container.Invocation{Image: o.image, Args: pdftotextArgs}
	if err := o.runtime.Run(ctx, inv, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with pdftotext: %w", path, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("pdftotext produced empty output for %s", path)
	}
	return &TextDocument{Pages: splitPages(out.String())}, nil
}

// splitPages splits pdftotext output on form feeds. The feed after the
// last page does not start another page.
func splitPages(s string) []string {
	pages := strings.Split(s, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}
