package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "who-pdf-reader/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// FetchConfig holds settings for locating and downloading reports.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// IndexURL is the page that links every published report PDF.
	IndexURL string `json:"index_url" yaml:"index_url" mapstructure:"index_url"`

	// BaseURL resolves relative report links.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Since drops reports whose file-name date is before this day
	// (YYYY-MM-DD). Empty keeps everything.
	Since string `json:"since" yaml:"since" mapstructure:"since"`

	// RequestsPerSecond paces downloads (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// TmpDir holds the one report currently being processed.
	TmpDir string `json:"tmp_dir" yaml:"tmp_dir" mapstructure:"tmp_dir"`

	// RespectRobots enables the robots.txt check before crawling.
	RespectRobots bool `json:"respect_robots" yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ConversionBackend identifies the PDF-to-text tool.
type ConversionBackend string

const (
	// BackendPDF reads text and tables in-process.
	BackendPDF ConversionBackend = "pdf"
	// BackendContainer pipes the PDF through a pdftotext container and
	// reads annex tables from the column alignment of its layout text.
	BackendContainer ConversionBackend = "container"
)

// ConversionConfig holds settings for the document backend.
type ConversionConfig struct {
	// Backend selects the conversion tool: pdf or container.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// StrainConfig describes how one tracked strain is found in a report.
type StrainConfig struct {
	// Code is the strain code searched in the new-infections summary.
	Code Strain `json:"code" yaml:"code" mapstructure:"code"`

	// SectionAnchor is the regexp opening the strain's narrative paragraph.
	SectionAnchor string `json:"section_anchor" yaml:"section_anchor" mapstructure:"section_anchor"`

	// AnnexAnchor is the regexp of the annex table header for the strain.
	AnnexAnchor string `json:"annex_anchor" yaml:"annex_anchor" mapstructure:"annex_anchor"`
}

// ExtractionConfig holds the anchors and limits of the text extractor.
type ExtractionConfig struct {
	Strains []StrainConfig `json:"strains" yaml:"strains" mapstructure:"strains"`

	// SummaryOpen and SummaryClose bound the new-infections summary.
	SummaryOpen  string `json:"summary_open" yaml:"summary_open" mapstructure:"summary_open"`
	SummaryClose string `json:"summary_close" yaml:"summary_close" mapstructure:"summary_close"`

	// SectionClose is the regexp closing every strain paragraph.
	SectionClose string `json:"section_close" yaml:"section_close" mapstructure:"section_close"`

	// MaxCaseCount is the largest case count accepted from prose (default 6).
	MaxCaseCount int `json:"max_case_count" yaml:"max_case_count" mapstructure:"max_case_count"`

	// SplitBackoff moves each case boundary left of the age phrase so the
	// age digits open the next case (default 3).
	SplitBackoff int `json:"split_backoff" yaml:"split_backoff" mapstructure:"split_backoff"`

	// HeaderWindow is how many leading characters are searched for the
	// report date (default 300).
	HeaderWindow int `json:"header_window" yaml:"header_window" mapstructure:"header_window"`
}

// OutputConfig holds settings for the tabular artifacts.
type OutputConfig struct {
	// ResultsDir receives the CSV files and the review file.
	ResultsDir string `json:"results_dir" yaml:"results_dir" mapstructure:"results_dir"`

	// CSVPattern is a fmt pattern taking the strain code.
	CSVPattern string `json:"csv_pattern" yaml:"csv_pattern" mapstructure:"csv_pattern"`

	// ReviewFile is the YAML file listing bad dates and warnings.
	ReviewFile string `json:"review_file" yaml:"review_file" mapstructure:"review_file"`
}

// StoreConfig holds settings for the SQLite run archive.
type StoreConfig struct {
	// Path is the database file; empty disables the archive.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultStrains reproduces the anchors of the published WHO risk
// assessments for H5N1 and H7N9.
func DefaultStrains() []StrainConfig {
	return []StrainConfig{
		{
			Code:          StrainH5N1,
			SectionAnchor: `[Aa]vian [Ii]nfluenza A\(H5\) viruse?s?`,
			AnnexAnchor:   `Annex:[\w* \n:-]*A\(H5.*\)`,
		},
		{
			Code:          StrainH7N9,
			SectionAnchor: `Avian [Ii]nfluenza A\(H7N9\)`,
			AnnexAnchor:   `Annex:[\w* \n:-]*A\(H7N9\)`,
		},
	}
}

// DefaultExtractionConfig returns the extractor defaults.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Strains:      DefaultStrains(),
		SummaryOpen:  `New infections`,
		SummaryClose: `Risk assessment`,
		SectionClose: `Risk [Aa]ssessment`,
		MaxCaseCount: 6,
		SplitBackoff: 3,
		HeaderWindow: 300,
	}
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    60 * time.Second,
				UserAgent:  "who-pdf-reader/0.1",
				MaxRetries: 5,
			},
			IndexURL:          "https://www.who.int/influenza/human_animal_interface/HAI_Risk_Assessment/en/",
			BaseURL:           "https://www.who.int",
			Since:             "2017-01-01",
			RequestsPerSecond: 1,
			TmpDir:            "tmp_pdfs",
			RespectRobots:     true,
		},
		Conversion: ConversionConfig{
			Backend: BackendPDF,
			Image:   "pdftotext:latest",
		},
		Extraction: DefaultExtractionConfig(),
		Output: OutputConfig{
			ResultsDir: "results",
			CSVPattern: "WHO-avian-flu-%s-reports.csv",
			ReviewFile: "review.yaml",
		},
	}
}
