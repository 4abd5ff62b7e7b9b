package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgostic/who-pdf-reader/pkg/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	initConfig()
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WHO_PDF_READER_FETCH_SINCE", "2019-06-01")
	t.Setenv("WHO_PDF_READER_FETCH_TIMEOUT", "15s")
	t.Setenv("WHO_PDF_READER_CONVERSION_BACKEND", "container")
	t.Setenv("WHO_PDF_READER_EXTRACTION_MAX_CASE_COUNT", "4")

	initConfig()
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "2019-06-01", cfg.Fetch.Since)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, types.BackendContainer, cfg.Conversion.Backend)
	assert.Equal(t, 4, cfg.Extraction.MaxCaseCount)
	assert.Len(t, cfg.Extraction.Strains, 2)
}

func TestStrainCodes(t *testing.T) {
	got := strainCodes(types.DefaultExtractionConfig())
	assert.Equal(t, []types.Strain{types.StrainH5N1, types.StrainH7N9}, got)
}
