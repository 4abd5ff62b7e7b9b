package convert

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Layout thresholds, as multiples of the font size.
const (
	wordGapFactor = 0.25
	cellGapFactor = 1.2
	defaultSize   = 10.0
)

// textRun is one positioned string on a line, as reported by the PDF
// reader. Runs are often single glyphs.
type textRun struct {
	X, W, Size float64
	S          string
}

// cell is a horizontally contiguous block of text on one line.
type cell struct {
	X0, X1 float64
	Text   string
}

// groupLines turns the runs of each visual line into cells.
func groupLines(lines [][]textRun) [][]cell {
	out := make([][]cell, 0, len(lines))
	for _, l := range lines {
		if cells := mergeRuns(l); len(cells) > 0 {
			out = append(out, cells)
		}
	}
	return out
}

// mergeRuns joins runs closer than the cell gap. A gap wider than a word
// gap, or an explicit blank run, becomes one space.
func mergeRuns(line []textRun) []cell {
	runs := append([]textRun(nil), line...)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var (
		cells   []cell
		cur     *cell
		b       strings.Builder
		pending bool
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			cells = append(cells, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, r := range runs {
		if strings.TrimSpace(r.S) == "" {
			pending = true
			continue
		}
		size := r.Size
		if size <= 0 {
			size = defaultSize
		}
		if cur != nil {
			gap := r.X - cur.X1
			switch {
			case gap > cellGapFactor*size:
				flush()
			case pending || gap > wordGapFactor*size:
				b.WriteByte(' ')
			}
		}
		if cur == nil {
			cur = &cell{X0: r.X, X1: r.X}
		}
		b.WriteString(r.S)
		cur.X1 = math.Max(cur.X1, r.X+r.W)
		pending = false
	}
	flush()
	return cells
}

// columnSplitRe matches one fixed-width cell: words separated by single
// spaces. Two or more spaces end the cell.
var columnSplitRe = regexp.MustCompile(`\S+(?: \S+)*`)

// tableFromText parses pages of layout-preserving text, where columns are
// separated by runs of spaces, into a table.
func tableFromText(pages []string) ([][]string, error) {
	var lines [][]cell
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimRight(line, " \t\r\f")
			var cells []cell
			for _, loc := range columnSplitRe.FindAllStringIndex(line, -1) {
				cells = append(cells, cell{
					X0:   float64(loc[0]),
					X1:   float64(loc[1]),
					Text: line[loc[0]:loc[1]],
				})
			}
			if len(cells) > 0 {
				lines = append(lines, cells)
			}
		}
	}
	return buildTable(lines)
}

// buildTable takes the first line with the most cells as the header and
// maps later cells onto its columns by horizontal position. A line whose
// first column is empty and that fills fewer than half of the columns
// continues the previous row (wrapped cell text); a fuller one is a row of
// its own. A line with only a first-column cell is a footnote or page
// number and is dropped, as is a lone page number. Lines above the header
// are titles.
func buildTable(lines [][]cell) ([][]string, error) {
	hdr := -1
	for i, l := range lines {
		if hdr < 0 || len(l) > len(lines[hdr]) {
			hdr = i
		}
	}
	if hdr < 0 || len(lines[hdr]) < 2 {
		return nil, fmt.Errorf("%w: no line with two or more columns", ErrNoTable)
	}

	cols := lines[hdr]
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Text
	}
	table := [][]string{header}

	for _, l := range lines[hdr+1:] {
		if len(l) == 1 && isPageNumber(l[0].Text) {
			continue
		}
		row := make([]string, len(cols))
		for _, c := range l {
			j := nearestColumn(cols, c)
			row[j] = joinText(row[j], c.Text)
		}
		filled := filledColumns(row)
		switch {
		case row[0] != "" && filled >= 2:
			table = append(table, row)
		case row[0] == "" && 2*filled >= len(cols):
			// A blank first cell repeats the value above, e.g. the
			// province of a second case from the same province.
			table = append(table, row)
		case row[0] == "" && len(table) > 1:
			last := table[len(table)-1]
			for j := range row {
				last[j] = joinText(last[j], row[j])
			}
		}
	}
	return table, nil
}

// nearestColumn returns the header column overlapping c the most, or the
// one whose centre is closest when nothing overlaps.
func nearestColumn(cols []cell, c cell) int {
	best, bestOverlap := -1, 0.0
	for j, col := range cols {
		overlap := math.Min(c.X1, col.X1) - math.Max(c.X0, col.X0)
		if overlap > bestOverlap {
			best, bestOverlap = j, overlap
		}
	}
	if best >= 0 {
		return best
	}
	centre := (c.X0 + c.X1) / 2
	best, bestDist := 0, math.Inf(1)
	for j, col := range cols {
		if d := math.Abs(centre - (col.X0+col.X1)/2); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func filledColumns(row []string) int {
	n := 0
	for _, v := range row {
		if v != "" {
			n++
		}
	}
	return n
}

func isPageNumber(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
