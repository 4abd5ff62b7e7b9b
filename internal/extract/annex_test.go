package extract

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// fakeDocument serves fixed page text and tables keyed by first page.
type fakeDocument struct {
	pages      []string
	tables     map[int][][]string
	tableCalls []int
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) PageText(i int) (string, error) {
	if i < 0 || i >= len(d.pages) {
		return "", fmt.Errorf("page %d out of range", i)
	}
	return d.pages[i], nil
}

func (d *fakeDocument) Table(first, _ int) ([][]string, error) {
	d.tableCalls = append(d.tableCalls, first)
	if t, ok := d.tables[first]; ok {
		return t, nil
	}
	return nil, errors.New("no table on page")
}

var annexHeader = []string{"Province", "Case no.", "Age", "Sex", "Date of onset", "Exposure"}

func annexTable() [][]string {
	return [][]string{
		annexHeader,
		{"Guangdong", "1", "68", "F", "25/12/2017", "Exposure to live poultry market"},
		{"Jiangsu", "2", "9 months", "M", "02/01/2018", "Unknown"},
		{"", "", "", "", "", ""},
		annexHeader,
		{"Hunan", "3", "45", "Male", "31/02/2018", "Contact with a sick relative"},
	}
}

func testReport() types.Report {
	return types.Report{
		Source: "report_01_25_2018.pdf",
		Date:   time.Date(2018, time.January, 25, 0, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeExposure(t *testing.T) {
	tests := []struct {
		cell        string
		wantPoultry types.Exposure
		wantSick    types.Exposure
	}{
		{"Exposure to live poultry market", types.ExposureYes, types.ExposureNo},
		{"Backyard Poultry", types.ExposureYes, types.ExposureNo},
		{"No known exposure", types.ExposureNo, types.ExposureNo},
		{"Under investigation", types.ExposureUnknown, types.ExposureNo},
		{"Occupational exposure", types.ExposureYes, types.ExposureNo},
		{"Unknown", types.ExposureUnknown, types.ExposureNo},
		{"unknow", types.ExposureUnknown, types.ExposureNo},
		{"No", types.ExposureNo, types.ExposureNo},
		{"No exposure to animals", types.ExposureNo, types.ExposureNo},
		{"NR", types.ExposureUnknown, types.ExposureNo},
		{"Contact with a sick relative", types.Exposure("Contact with a sick relative"), types.ExposureYes},
		{"  Visited\n a farm ", types.Exposure("Visited a farm"), types.ExposureYes},
		{"12", types.Exposure("12"), types.ExposureNo},
		{"", types.ExposureUnknown, types.ExposureUnknown},
		{"Nothing reported", types.Exposure("Nothing reported"), types.ExposureYes},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			poultry, sick := NormalizeExposure(tt.cell)
			assert.Equal(t, tt.wantPoultry, poultry)
			assert.Equal(t, tt.wantSick, sick)
		})
	}
}

func TestParseAnnexTable(t *testing.T) {
	rep := testReport()
	got, err := ParseAnnexTable(annexTable(), types.StrainH7N9, rep)
	require.NoError(t, err)
	require.Len(t, got.Records, 3)

	first := got.Records[0]
	assert.Equal(t, types.StrainH7N9, first.Strain)
	assert.Equal(t, types.Age{Value: 68, Unit: types.AgeYears, Raw: "68"}, first.Age)
	assert.Equal(t, types.SexFemale, first.Sex)
	assert.Equal(t, "2017-12-25", first.DateOnset)
	assert.Equal(t, rep.Date, first.DateAnnounced)
	assert.Equal(t, types.ExposureYes, first.PoultryExposure)
	assert.Equal(t, types.ExposureNo, first.SickHumanExposure)

	second := got.Records[1]
	assert.Equal(t, types.AgeMonths, second.Age.Unit)
	assert.Equal(t, 9, second.Age.Value)
	assert.Equal(t, types.SexMale, second.Sex)
	assert.Equal(t, types.ExposureUnknown, second.PoultryExposure)

	third := got.Records[2]
	assert.Equal(t, types.SexMale, third.Sex)
	assert.Equal(t, "31/02/2018", third.DateOnset)
	assert.Equal(t, types.Exposure("Contact with a sick relative"), third.PoultryExposure)
	assert.Equal(t, types.ExposureYes, third.SickHumanExposure)

	require.Equal(t, 1, got.BadDates.Len())
	assert.Equal(t, types.BadDate{ReportDate: "2018-01-25", Raw: "31/02/2018"}, got.BadDates.Entries[0])

	require.Len(t, got.Warnings, 1)
	assert.Equal(t, types.WarnExposureText, got.Warnings[0].Kind)
}

func TestParseAnnexTable_Idempotent(t *testing.T) {
	rep := testReport()
	a, errA := ParseAnnexTable(annexTable(), types.StrainH7N9, rep)
	b, errB := ParseAnnexTable(annexTable(), types.StrainH7N9, rep)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestParseAnnexTable_ColumnCount(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"too few", []string{"Province", "Age", "Sex", "Onset"}},
		{"too many", []string{"Age", "Sex", "Onset", "Exposure", "Outcome"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnnexTable([][]string{tt.header}, types.StrainH5N1, testReport())
			require.ErrorIs(t, err, errAnnexColumns)
		})
	}
	_, err := ParseAnnexTable(nil, types.StrainH5N1, testReport())
	require.ErrorIs(t, err, errAnnexColumns)
}

func TestReadAnnex(t *testing.T) {
	header := regexp.MustCompile(`Annex:[\w* \n:-]*A\(H7N9\)`)

	t.Run("table on header page", func(t *testing.T) {
		doc := &fakeDocument{
			pages:  []string{"summary", "Annex: Human cases of avian influenza A(H7N9)", "table"},
			tables: map[int][][]string{1: annexTable()},
		}
		got, err := readAnnex(doc, header, types.StrainH7N9, testReport())
		require.NoError(t, err)
		assert.Len(t, got.Records, 3)
		assert.Equal(t, []int{1}, doc.tableCalls)
	})

	t.Run("retries one page later", func(t *testing.T) {
		doc := &fakeDocument{
			pages:  []string{"summary", "Annex:\nHuman cases of avian influenza A(H7N9)", "table"},
			tables: map[int][][]string{2: annexTable()},
		}
		got, err := readAnnex(doc, header, types.StrainH7N9, testReport())
		require.NoError(t, err)
		assert.Len(t, got.Records, 3)
		assert.Equal(t, []int{1, 2}, doc.tableCalls)
	})

	t.Run("uses last header page", func(t *testing.T) {
		doc := &fakeDocument{
			pages: []string{
				"Annex: A(H7N9) listed below",
				"body",
				"Annex: Human cases of avian influenza A(H7N9)",
			},
			tables: map[int][][]string{0: annexTable(), 2: annexTable()},
		}
		_, err := readAnnex(doc, header, types.StrainH7N9, testReport())
		require.NoError(t, err)
		assert.Equal(t, []int{2}, doc.tableCalls)
	})

	t.Run("second failure is terminal", func(t *testing.T) {
		doc := &fakeDocument{
			pages: []string{"Annex: avian influenza A(H7N9)", "x", "y"},
		}
		_, err := readAnnex(doc, header, types.StrainH7N9, testReport())
		require.ErrorIs(t, err, ErrAnnexUnreadable)
		assert.Equal(t, []int{0, 1}, doc.tableCalls)
	})

	t.Run("wrong columns retried", func(t *testing.T) {
		doc := &fakeDocument{
			pages: []string{"Annex: avian influenza A(H7N9)", "rest"},
			tables: map[int][][]string{
				0: {{"Age", "Sex"}},
				1: annexTable(),
			},
		}
		got, err := readAnnex(doc, header, types.StrainH7N9, testReport())
		require.NoError(t, err)
		assert.Len(t, got.Records, 3)
	})

	t.Run("header missing", func(t *testing.T) {
		doc := &fakeDocument{pages: []string{"no annex here"}}
		_, err := readAnnex(doc, header, types.StrainH7N9, testReport())
		require.ErrorIs(t, err, ErrAnnexUnreadable)
		assert.Empty(t, doc.tableCalls)
	})
}
