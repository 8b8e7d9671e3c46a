package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "input_dir: ./extracts\n"), false)
	require.NoError(t, err)

	assert.Equal(t, "./extracts", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "xlsx", cfg.OutputFormat)
	assert.Equal(t, "Consolidado", cfg.SheetName)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "UTF-8", cfg.CSV.Encoding)
}

func TestLoadFullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
input_files: [a.xlsx, b.xls]
output_format: CSV
reference_date: "20/06/2025"
date_range:
  start: "01/06/2025"
  end: "30/06/2025"
column_order: [Credito, Empresa]
csv:
  delimiter: ";"
  encoding: WINDOWS-1252
`), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.xlsx", "b.xls"}, cfg.InputFiles)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, []string{"Credito", "Empresa"}, cfg.ColumnOrder)
	assert.Equal(t, ";", cfg.CSV.Delimiter)

	ref, err := cfg.Reference()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), *ref)

	start, end, err := cfg.Range()
	require.NoError(t, err)
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, 30, end.Day())
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(missing, false)
	assert.Error(t, err)

	cfg, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, "./input", cfg.InputDir)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad format", "output_format: pdf\n"},
		{"bad level", "log_level: loud\n"},
		{"bad reference", "reference_date: \"2025-06-20\"\n"},
		{"half range", "date_range:\n  start: 01/06/2025\n"},
		{"inverted range", "date_range:\n  start: 30/06/2025\n  end: 01/06/2025\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body), false)
			assert.Error(t, err)
		})
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(writeConfig(t, "output_dir: ./from-file\n"))
	require.NoError(t, v.ReadInConfig())
	v.Set("output_dir", "./from-flag")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "./from-flag", cfg.OutputDir)
}
