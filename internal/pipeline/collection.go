package pipeline

import "github.com/cgostic/who-pdf-reader/pkg/types"

// Collection holds the case records of a run grouped by strain. Records
// keep the order they were added in: report order, then discovery order
// within a report.
type Collection struct {
	order   []types.Strain
	records map[types.Strain][]types.CaseRecord
}

// NewCollection returns an empty collection listing strains in the given
// order. Strains added later are appended to the order.
func NewCollection(strains []types.Strain) *Collection {
	c := &Collection{records: make(map[types.Strain][]types.CaseRecord)}
	for _, s := range strains {
		c.ensure(s)
	}
	return c
}

func (c *Collection) ensure(s types.Strain) {
	if _, ok := c.records[s]; !ok {
		c.records[s] = nil
		c.order = append(c.order, s)
	}
}

// Append adds records under their own strain.
func (c *Collection) Append(recs ...types.CaseRecord) {
	for _, r := range recs {
		c.ensure(r.Strain)
		c.records[r.Strain] = append(c.records[r.Strain], r)
	}
}

// Strains returns every strain of the collection, including those without
// records.
func (c *Collection) Strains() []types.Strain {
	return append([]types.Strain(nil), c.order...)
}

// Records returns a copy of the records of strain s.
func (c *Collection) Records(s types.Strain) []types.CaseRecord {
	return append([]types.CaseRecord(nil), c.records[s]...)
}

// Len returns the total number of records.
func (c *Collection) Len() int {
	n := 0
	for _, recs := range c.records {
		n += len(recs)
	}
	return n
}
