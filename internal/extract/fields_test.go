package extract

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line breaks become spaces", "one new\nlaboratory-confirmed\r\ncase", "one new laboratory-confirmed case"},
		{"hyphen broken across lines", "a 68-year-\nold female", "a 68-year-old female"},
		{"unicode hyphen", "a 68\u2011year\u2010old female", "a 68-year-old female"},
		{"soft hyphen dropped", "labo\u00adratory", "laboratory"},
		{"ligature folded", "con\ufb01rmed", "confirmed"},
		{"no-break space", "25\u00a0December", "25 December"},
		{"trimmed", "  \n text \n ", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestFindNth(t *testing.T) {
	re := regexp.MustCompile(`ab`)
	s := "xxab--ab--ab"

	tests := []struct {
		n      int
		want   int
		wantOK bool
	}{
		{1, 2, true},
		{2, 6, true},
		{3, 10, true},
		{4, 0, false},
		{-1, 10, true},
		{-3, 2, true},
		{-4, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		got, ok := FindNth(s, re, tt.n)
		assert.Equal(t, tt.wantOK, ok, "n=%d", tt.n)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestSection(t *testing.T) {
	open := regexp.MustCompile(`New infections`)
	close := regexp.MustCompile(`Risk assessment`)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"found", "intro New infections: H7N9 Risk assessment rest", "New infections: H7N9 "},
		{"close before open ignored", "Risk assessment New infections: x Risk assessment", "New infections: x "},
		{"open missing", "nothing here Risk assessment", ""},
		{"close missing", "New infections: x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Section(tt.text, open, close))
		})
	}
}

func TestResolveCaseCount(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{"spelled", "Since the last update, one laboratory-confirmed case", 1, false},
		{"skips new", "two new laboratory-confirmed human cases", 2, false},
		{"capitalized", "Three laboratory-confirmed cases", 3, false},
		{"digits", "reported 4 new laboratory-confirmed cases", 4, false},
		{"six", "six laboratory-confirmed", 6, false},
		{"space instead of hyphen", "five laboratory confirmed cases", 5, false},
		{"seven exceeds max", "seven laboratory-confirmed", 0, true},
		{"ten as digits exceeds max", "10 laboratory-confirmed", 0, true},
		{"no phrase", "a case was reported", 0, true},
		{"unrecognized word", "additional laboratory-confirmed cases", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCaseCount(tt.text, 6)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrCaseCount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const twoCaseParagraph = "Avian influenza A(H5) viruses Since the previous update, two new " +
	"laboratory-confirmed human cases of influenza A(H5N1) virus infection were reported. " +
	"The first case was a 4-year-old girl from Khanh Hoa province with onset of illness on " +
	"26 October 2019. She had exposure to backyard poultry. A second case, a 5-year-old girl " +
	"from Dak Lak province, had onset of illness on 12 November 2019. She was exposed to a " +
	"poultry slaughterhouse. "

func TestSplitCases(t *testing.T) {
	t.Run("single case is whole paragraph", func(t *testing.T) {
		spans, complete := SplitCases("A 68-year-old female.", 1, 3)
		assert.True(t, complete)
		assert.Equal(t, []string{"A 68-year-old female."}, spans)
	})

	t.Run("two cases", func(t *testing.T) {
		spans, complete := SplitCases(twoCaseParagraph, 2, 3)
		require.Len(t, spans, 2)
		assert.True(t, complete)
		assert.Contains(t, spans[0], "4-year-old")
		assert.NotContains(t, spans[0], "5-year-old")
		assert.Contains(t, spans[1], "5-year-old")
		assert.Equal(t, twoCaseParagraph, spans[0]+spans[1])
	})

	t.Run("fewer age phrases than cases", func(t *testing.T) {
		text := "A 30-year-old man fell ill. Another case, a 41-year-old woman. A third case."
		spans, complete := SplitCases(text, 3, 3)
		require.Len(t, spans, 3)
		assert.False(t, complete)
		assert.Contains(t, spans[1], "41-year-old")
		assert.Equal(t, spans[1], spans[2])
	})

	t.Run("no age phrases", func(t *testing.T) {
		spans, complete := SplitCases("two cases were reported", 2, 3)
		assert.False(t, complete)
		assert.Equal(t, []string{"two cases were reported", "two cases were reported"}, spans)
	})
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		span string
		want types.Age
	}{
		{"A 68-year-old female", types.Age{Value: 68, Unit: types.AgeYears, Raw: "68-year-old"}},
		{"a 5 year old boy", types.Age{Value: 5, Unit: types.AgeYears, Raw: "5 year old"}},
		{"a 9-month-old infant", types.Age{Value: 9, Unit: types.AgeMonths, Raw: "9-month-old"}},
		{"an adult", types.UnknownAge},
	}
	for _, tt := range tests {
		t.Run(tt.span, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAge(tt.span))
		})
	}
}

func TestExtractSex(t *testing.T) {
	tests := []struct {
		span   string
		want   types.Sex
		wantOK bool
	}{
		{"A 68-year-old female from Guangdong", types.SexFemale, true},
		{"A 45-year-old male farmer", types.SexMale, true},
		{"A 45-year-old Male", types.SexMale, true},
		{"the case was admitted. She had exposure", types.SexFemale, true},
		{"admitted, and he died later", types.SexMale, true},
		{"the case, a 4-year-old girl from Fujian", types.SexFemale, true},
		{"the case, a 61-year-old man from Hunan", types.SexMale, true},
		{"the other patient was admitted", types.SexUnknown, false},
		{"female wins over he ", types.SexFemale, true},
		{"a 45-year-old woman, symptoms on 5 January", types.SexFemale, true},
		{"the patient was a man.", types.SexMale, true},
		{"admitted to hospital where he", types.SexMale, true},
		{"She, too, was hospitalised", types.SexFemale, true},
		{"her manager reported the case", types.SexUnknown, false},
		{"a boyfriend and the herd owner", types.SexUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.span, func(t *testing.T) {
			got, ok := ExtractSex(tt.span)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestExtractOnset(t *testing.T) {
	report := time.Date(2018, time.January, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		span string
		want Onset
	}{
		{"explicit year wins", "developed symptoms on 25 December 2017.",
			Onset{Date: "2017-12-25", Found: true}},
		{"report year", "had onset of illness on 3 January.",
			Onset{Date: "2018-01-03", Found: true}},
		{"developed cue", "developed fever and cough on 7 Jan",
			Onset{Date: "2018-01-07", Found: true}},
		{"later month without year", "symptoms on 28 December",
			Onset{Date: "2018-12-28", Found: true, Rollover: true}},
		{"non-month word skipped", "symptoms on 2 occasions; onset on 4 January 2018",
			Onset{Date: "2018-01-04", Found: true}},
		{"invalid day", "symptoms on 31 February", Onset{Date: types.OnsetCheckFormat}},
		{"no cue", "was hospitalized on 25 December", Onset{Date: types.OnsetCheckFormat}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractOnset(tt.span, report))
		})
	}
}

func TestExtractPoultryExposure(t *testing.T) {
	tests := []struct {
		name string
		span string
		want types.Exposure
	}{
		{"poultry sentence", "She fell ill. She had exposure to backyard poultry. End", types.ExposureYes},
		{"poultry at span start", "visited a live poultry market before onset.", types.ExposureYes},
		{"negated poultry", "He fell ill. He reported no contact with poultry.", types.ExposureNo},
		{"exposure phrase", "The case had exposure to sick ducks", types.ExposureYes},
		{"negated exposure", "There was no known exposure to animals", types.ExposureNo},
		{"birds", "She handled wild birds at home", types.ExposureYes},
		{"negated birds", "He did not touch birds", types.ExposureNo},
		{"nothing mentioned", "A 68-year-old female developed symptoms on 25 December 2017.", types.ExposureNo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPoultryExposure(tt.span))
		})
	}
}
