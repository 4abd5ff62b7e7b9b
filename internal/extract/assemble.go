package extract

import "github.com/cgostic/who-pdf-reader/pkg/types"

// caseFields are the per-case values produced by the field extractors or
// the annex parser.
type caseFields struct {
	age       types.Age
	sex       types.Sex
	onset     string
	poultry   types.Exposure
	sickHuman types.Exposure
}

// assemble builds the record for one case. The announcement date is always
// the report's date.
func assemble(strain types.Strain, rep types.Report, f caseFields) types.CaseRecord {
	return types.CaseRecord{
		Strain:            strain,
		Age:               f.age,
		Sex:               f.sex,
		DateOnset:         f.onset,
		DateAnnounced:     rep.Date,
		PoultryExposure:   f.poultry,
		SickHumanExposure: f.sickHuman,
		Source:            rep.Source,
	}
}
